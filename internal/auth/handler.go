package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/store"
)

// Handler serves login and logout.
type Handler struct {
	repo  store.Repository
	isDev bool
}

// NewHandler creates an auth handler.
func NewHandler(repo store.Repository, isDev bool) *Handler {
	return &Handler{repo: repo, isDev: isDev}
}

// RegisterRoutes registers auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/login", h.HandleLogin)
	r.Post("/api/logout", h.HandleLogout)
	r.Get("/api/session", h.HandleSession)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.repo.GetUser(r.Context(), req.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if user == nil || !checkPassword(user.Password, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials. Try again."})
		return
	}

	token, err := generateToken()
	if err != nil {
		slog.Error("session token generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	now := time.Now()
	sess := &domain.Session{
		Token:      token,
		Username:   user.Username,
		State:      domain.StateNone,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("session create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	setSessionCookie(w, token, h.isDev)
	slog.Info("User logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// HandleLogout deletes the session entirely, including any in-progress
// conversation state, and clears the cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess != nil {
		if err := h.repo.DeleteSession(r.Context(), sess.Token); err != nil {
			slog.Warn("session delete failed", "error", err, "username", sess.Username)
		}
		slog.Info("User logged out", "username", sess.Username)
	}
	clearSessionCookie(w, h.isDev)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleSession reports who is logged in, for the SPA to restore state.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": sess.Username})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}
