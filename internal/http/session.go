package http

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	sessionCookieName = "subboard_session"
	sessionMaxAge     = 365 * 24 * 60 * 60
)

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or carries a malformed one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
