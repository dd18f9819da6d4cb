package http

import (
	"net/http"
	"time"

	"rentledger/internal/core"
)

func (s *Server) handleCreateTenancy(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[tenancyRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rent, err := parseAmount(req.RentAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var end core.Date
	if req.EndDate != "" {
		end, err = core.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	owner := ownerID(r)
	// The referenced property and tenant must belong to the same owner.
	if _, err := s.store.GetProperty(r.Context(), owner, req.PropertyID); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.store.GetTenant(r.Context(), owner, req.TenantID); err != nil {
		writeError(w, r, err)
		return
	}

	t := core.Tenancy{
		OwnerID:    owner,
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		RentAmount: rent,
		Frequency:  core.Frequency(req.Frequency),
		StartDate:  start,
		EndDate:    end,
	}
	created, err := s.ledger.CreateTenancy(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboard(owner)
	obligationsCreatedTotal.WithLabelValues(string(core.KindRent)).Inc()
	writeJSON(w, http.StatusCreated, newTenancyView(*created, s.userCurrency(r)))
}

func (s *Server) handleListTenancies(w http.ResponseWriter, r *http.Request) {
	tenancies, err := s.store.ListTenancies(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	currency := s.userCurrency(r)
	views := make([]tenancyView, 0, len(tenancies))
	for _, t := range tenancies {
		views = append(views, newTenancyView(t, currency))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetTenancy(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTenancy(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTenancyView(*t, s.userCurrency(r)))
}

// handleEndTenancy closes a tenancy as of today. Billing stops; existing
// obligations stay on the ledger untouched.
func (s *Server) handleEndTenancy(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	t, err := s.store.GetTenancy(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Ending a tenancy that has not started yet cancels it on its start
	// date; the end date never precedes the start date.
	end := core.DateOf(time.Now())
	if end.Before(t.StartDate) {
		end = t.StartDate
	}
	t.EndDate = end
	t.Active = false
	if err := t.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpdateTenancy(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTenancyView(*t, s.userCurrency(r)))
}

// handleDeleteTenancy removes the tenancy record. Its obligations keep their
// tenancy id and stay on the ledger.
func (s *Server) handleDeleteTenancy(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTenancy(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
