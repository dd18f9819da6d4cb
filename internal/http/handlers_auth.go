package http

import (
	"log/slog"
	"net/http"
	"time"

	"rentledger/internal/core"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[registerRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", user.ID, "email", user.Email)
	s.setSessionCookie(w, r, user)
	writeJSON(w, http.StatusCreated, newUserView(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[loginRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, r, user)
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByID(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

// setSessionCookie issues a fresh JWT and stores it in the session cookie.
// The cookie lifetime tracks the token lifetime so they expire together.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, user *core.User) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to generate session token",
			"user_id", user.ID, "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.jwtManager.TokenDuration()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
