package facturio

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenSource supplies the bearer token attached to every request. The client
// itself never manages credentials; the identity collaborator does.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken returns a TokenSource that always yields tok.
func StaticToken(tok string) TokenSource {
	return staticSource(tok)
}

type staticSource string

func (s staticSource) Token() (string, error) {
	if s == "" {
		return "", &Error{Kind: KindValidation, Message: "no API token configured"}
	}
	return string(s), nil
}

// BearerJWT returns a TokenSource that yields raw after checking, without
// signature verification, that it parses as a JWT and has not expired.
// Verification stays the server's job; the local check just stops requests
// that are guaranteed to come back 401.
func BearerJWT(raw string) TokenSource {
	return jwtSource(raw)
}

type jwtSource string

func (s jwtSource) Token() (string, error) {
	if s == "" {
		return "", &Error{Kind: KindValidation, Message: "no API token configured"}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(string(s), &claims); err != nil {
		return "", &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("malformed bearer token: %v", err),
		}
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(time.Now()) {
		return "", &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("bearer token expired at %s", claims.ExpiresAt.Format(time.RFC3339)),
		}
	}

	return string(s), nil
}
