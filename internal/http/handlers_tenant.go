package http

import (
	"net/http"

	"github.com/google/uuid"

	"rentledger/internal/core"
)

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[tenantRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t := core.Tenant{
		ID:      uuid.New().String(),
		OwnerID: ownerID(r),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
	}
	if err := t.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.CreateTenant(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTenantView(t))
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.store.ListTenants(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, newTenantView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTenant(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTenantView(*t))
}

func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[tenantRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.store.GetTenant(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	t.Name = req.Name
	t.Email = req.Email
	t.Phone = req.Phone
	if err := t.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpdateTenant(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTenantView(*t))
}

func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTenant(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
