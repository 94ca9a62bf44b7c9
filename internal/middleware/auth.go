package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/suyanik/Einkauflist/internal/auth"
	"github.com/suyanik/Einkauflist/internal/session"
	"github.com/suyanik/Einkauflist/internal/store"
)

// RequireAuth validates the session cookie and populates the auth context.
// The token itself carries no integrity protection, so the user is looked up
// on every request; a token for a deleted user is rejected.
func RequireAuth(users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			token, err := session.Decode(cookie.Value)
			if err != nil || token.Expired(time.Now()) {
				unauthorized(w)
				return
			}

			user, err := users.GetByID(token.UserID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID: user.ID,
				Name:   user.Name,
				Role:   user.Role,
			}
			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the authenticated user has the ADMIN role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeEnvelope(w, http.StatusForbidden, "Yetkiniz yok")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusUnauthorized, "Oturum geçersiz")
}

func writeEnvelope(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
