package http

import (
	"net/http"

	"github.com/google/uuid"

	"rentledger/internal/core"
)

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[propertyRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	units := req.Units
	if units == 0 {
		units = 1
	}
	p := core.Property{
		ID:      uuid.New().String(),
		OwnerID: ownerID(r),
		Name:    req.Name,
		Address: req.Address,
		Units:   units,
		Notes:   req.Notes,
	}
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.CreateProperty(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPropertyView(p))
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.ListProperties(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]propertyView, 0, len(props))
	for _, p := range props {
		views = append(views, newPropertyView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProperty(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPropertyView(*p))
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[propertyRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := ownerID(r)
	p, err := s.store.GetProperty(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	p.Name = req.Name
	p.Address = req.Address
	if req.Units > 0 {
		p.Units = req.Units
	}
	p.Notes = req.Notes
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpdateProperty(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPropertyView(*p))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProperty(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
