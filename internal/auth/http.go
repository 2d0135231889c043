package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type credentialsIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func sessionOut(u User, token string, exp time.Time) map[string]any {
	return map[string]any{
		"ok": true,
		"user": map[string]any{
			"id":    u.ID,
			"email": u.Email,
		},
		"token":     token,
		"expiresAt": exp.Format(time.RFC3339),
	}
}

// POST /api/auth/signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in credentialsIn
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, token, exp, err := h.service.SignUp(in.Email, in.Password, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrEmailTaken):
			writeErr(w, http.StatusConflict, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not sign up")
		}
		return
	}

	h.service.SetSessionCookie(w, token, exp)
	writeJSON(w, http.StatusCreated, sessionOut(u, token, exp))
}

// POST /api/auth/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in credentialsIn
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, token, exp, err := h.service.SignIn(in.Email, in.Password, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			writeErr(w, http.StatusUnauthorized, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not sign in")
		}
		return
	}

	h.service.SetSessionCookie(w, token, exp)
	writeJSON(w, http.StatusOK, sessionOut(u, token, exp))
}

// POST /api/auth/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(h.service.cookieName); err == nil {
			token = c.Value
		}
	}
	if token != "" {
		if err := h.service.SignOut(token, time.Now()); err != nil {
			writeErr(w, http.StatusInternalServerError, "could not sign out")
			return
		}
	}
	h.service.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, sess, ok := h.service.Authenticate(r, time.Now())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"user": map[string]any{
			"id":    u.ID,
			"email": u.Email,
		},
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
}
