package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"rentledger/internal/auth"
	"rentledger/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors become a
// generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var msg string

	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, core.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyOwner):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.As(err, &vErrs):
		status, msg = http.StatusBadRequest, vErrs.Error()
	case errors.Is(err, errBadJSON):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrEmailExists):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrWeakPassword):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"url", r.URL.Path,
			"error", err)
		status, msg = http.StatusInternalServerError, "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON parses and validates a request body.
func decodeJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, errBadJSON
	}
	if err := validate.Struct(v); err != nil {
		return v, err
	}
	return v, nil
}

var errBadJSON = errors.New("invalid request body")
