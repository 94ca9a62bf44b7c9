// Package session implements the opaque bearer token carried in the
// "session" cookie. The token is base64-encoded JSON holding the user id and
// issue time in epoch milliseconds. It is deliberately unsigned to stay
// wire-compatible with existing clients; callers must treat a decoded token
// as untrusted input and re-check the user on every request.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// CookieName is the session cookie key.
	CookieName = "session"
	// MaxAge is how long a token stays valid after issue.
	MaxAge = 7 * 24 * time.Hour
)

// Token is the decoded session payload.
type Token struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"` // epoch millis at issue
}

// New mints a token for the given user, issued now.
func New(userID string) Token {
	return Token{UserID: userID, Timestamp: time.Now().UnixMilli()}
}

// Encode serializes the token to its cookie value.
func (t Token) Encode() string {
	data, _ := json.Marshal(t)
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses a cookie value back into a token.
func Decode(raw string) (*Token, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if t.UserID == "" {
		return nil, fmt.Errorf("parse session token: empty user id")
	}
	return &t, nil
}

// Expired reports whether the token's issue time is older than MaxAge.
func (t Token) Expired(now time.Time) bool {
	issued := time.UnixMilli(t.Timestamp)
	return now.Sub(issued) > MaxAge
}

// SetCookie writes the session cookie for the token.
func SetCookie(w http.ResponseWriter, t Token, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    t.Encode(),
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
