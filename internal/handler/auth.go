package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/suyanik/Einkauflist/internal/session"
	"github.com/suyanik/Einkauflist/internal/store"
)

type AuthHandler struct {
	users *store.UserStore
	// secureCookies forces the Secure flag on session cookies. Needed behind
	// a TLS-terminating proxy, where r.TLS is always nil.
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(users *store.UserStore, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, secureCookies: secureCookies, logger: logger}
}

type loginRequest struct {
	PIN string `json:"pin"`
}

// loginUser is the subset of the user record returned on login. PIN and
// phone stay server-side.
type loginUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Geçersiz PIN formatı")
		return
	}
	// Only the length is enforced, matching the existing clients.
	if len(req.PIN) != 4 {
		writeError(w, http.StatusBadRequest, "Geçersiz PIN formatı")
		return
	}

	user, err := h.users.GetByPIN(req.PIN)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "Giriş başarısız")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Hatalı PIN")
		return
	}

	session.SetCookie(w, session.New(user.ID), h.secureCookies || r.TLS != nil)
	writeSuccess(w, map[string]any{
		"user": loginUser{ID: user.ID, Name: user.Name, Role: user.Role},
	})
}

// Logout clears the cookie. Tokens carry their own expiry, so there is no
// server-side state to invalidate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	writeSuccess(w, nil)
}
