package http

import (
	"net/http"

	"github.com/google/uuid"

	"rentledger/internal/core"
)

func (s *Server) handleCreateMaintenance(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[maintenanceRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := ownerID(r)
	if _, err := s.store.GetProperty(r.Context(), owner, req.PropertyID); err != nil {
		writeError(w, r, err)
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}
	m := core.MaintenanceRequest{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		PropertyID:  req.PropertyID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
	}
	if err := s.store.CreateMaintenanceRequest(r.Context(), &m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMaintenanceView(m))
}

func (s *Server) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListMaintenanceRequests(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]maintenanceView, 0, len(requests))
	for _, m := range requests {
		views = append(views, newMaintenanceView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleResolveMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResolveMaintenanceRequest(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMaintenanceRequest(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
