package http

import (
	"net/http"

	"rentledger/internal/core"
)

func (s *Server) handleCreateObligation(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[obligationRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := ownerID(r)
	if req.TenancyID != "" {
		if _, err := s.store.GetTenancy(r.Context(), owner, req.TenancyID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	o := core.Obligation{
		OwnerID:     owner,
		TenancyID:   req.TenancyID,
		Kind:        core.Kind(req.Kind),
		Description: req.Description,
		Amount:      amount,
		DueDate:     due,
		Notes:       req.Notes,
	}
	created, err := s.ledger.CreateObligation(r.Context(), o)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboard(owner)
	obligationsCreatedTotal.WithLabelValues(req.Kind).Inc()
	writeJSON(w, http.StatusCreated, newObligationView(*created, s.userCurrency(r)))
}

func (s *Server) handleListObligations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := obligationFilterFromQuery(
		q.Get("kind"), q.Get("status"), q.Get("tenancy_id"), q.Get("due_from"), q.Get("due_to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	obs, err := s.ledger.ListObligations(r.Context(), ownerID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newObligationViews(obs, s.userCurrency(r)))
}

func (s *Server) handleGetObligation(w http.ResponseWriter, r *http.Request) {
	o, err := s.ledger.GetObligation(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newObligationView(*o, s.userCurrency(r)))
}

func (s *Server) handleDeleteObligation(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if err := s.store.DeleteObligation(r.Context(), owner, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboard(owner)
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordPayment applies a payment increment. Each request adds its
// amount on top of what is already paid; repeating a request pays twice.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[paymentRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	meta := core.PaymentMeta{
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if req.PaidDate != "" {
		paid, err := core.ParseDate(req.PaidDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		meta.PaidDate = paid
	}

	owner := ownerID(r)
	o, err := s.ledger.RecordPayment(r.Context(), owner, r.PathValue("id"), amount, meta)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboard(owner)
	paymentsRecordedTotal.Inc()
	writeJSON(w, http.StatusOK, newObligationView(*o, s.userCurrency(r)))
}

type sweepResponse struct {
	Swept int64 `json:"swept"`
}

func (s *Server) handleSweepOverdue(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	n, err := s.ledger.SweepOverdue(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n > 0 {
		s.invalidateDashboard(owner)
		overdueSweptTotal.Add(float64(n))
	}
	writeJSON(w, http.StatusOK, sweepResponse{Swept: n})
}
