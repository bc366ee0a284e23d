package core

import (
	"strings"

	"github.com/google/uuid"
)

// Session is an anonymous caller identity. Its only state is whether the
// token was issued during the current request.
type Session struct {
	Token string
	IsNew bool
}

// ResolveSession returns the presented token unchanged, or issues a fresh
// random uuid v4 token when none was presented. The caller
// is responsible for handing a new token back to the client.
func ResolveSession(presented string) Session {
	if token := strings.TrimSpace(presented); token != "" {
		return Session{Token: token}
	}
	return Session{Token: uuid.NewString(), IsNew: true}
}

// RequireSession guards read paths: a missing token fails, any present token
// (known or not) is accepted as an existing, possibly empty, session.
func RequireSession(presented string) (string, error) {
	token := strings.TrimSpace(presented)
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
