package http

import (
	"net/http"
	"time"
)

// SessionCookieName carries the anonymous session token.
const SessionCookieName = "sessionId"

type sessionCookies struct {
	maxAge time.Duration
	secure bool
}

// sessionToken returns the presented token, empty when none was sent.
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// issue hands a freshly created token back to the client.
func (c sessionCookies) issue(w http.ResponseWriter, token string) {
	maxAge := c.maxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge).UTC(),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
