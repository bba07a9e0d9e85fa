package facturio

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "abc" {
		t.Errorf("token = %v, want abc", tok)
	}

	if _, err := StaticToken("").Token(); !IsValidation(err) {
		t.Errorf("empty token error = %v, want a validation error", err)
	}
}

func TestBearerJWT(t *testing.T) {
	t.Run("valid token passes through", func(t *testing.T) {
		raw := signedToken(t, time.Now().Add(time.Hour))
		tok, err := BearerJWT(raw).Token()
		if err != nil {
			t.Fatalf("Token failed: %v", err)
		}
		if tok != raw {
			t.Error("token was altered")
		}
	})

	t.Run("expired token is rejected locally", func(t *testing.T) {
		raw := signedToken(t, time.Now().Add(-time.Minute))
		_, err := BearerJWT(raw).Token()
		if !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		if _, err := BearerJWT("not-a-jwt").Token(); !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})

	t.Run("empty is rejected", func(t *testing.T) {
		if _, err := BearerJWT("").Token(); !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})
}
