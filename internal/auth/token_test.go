package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenService_IssueAndDecode(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret")

	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	email, err := svc.Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", email)
	}
}

func TestTokenService_DecodeWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenService("secret-a").Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = NewTokenService("secret-b").Decode(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenService_DecodeMalformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenService_DecodeTamperedPayload(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret")

	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Swap the payload segment for another token's payload.
	other, err := svc.Issue("mallory@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := svc.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestTokenService_DecodeMissingEmailClaim(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	svc := NewTokenService(secret)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
	})
	signed, err := raw.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Decode(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for missing email claim, got %v", err)
	}
}

func TestTokenService_DecodeRejectsNonHMAC(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret")

	// alg=none tokens must never pass.
	raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "alice@example.com",
	})
	unsigned, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Decode(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none token, got %v", err)
	}
}

func TestTokenService_NoExpiry(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret")

	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// The payload must carry only the email claim; tokens are bearer-valid
	// forever and validity against the live user set is checked elsewhere.
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified failed: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if _, hasExp := claims["exp"]; hasExp {
		t.Error("token must not carry an expiry claim")
	}
	if len(claims) != 1 {
		t.Errorf("expected a single claim, got %d", len(claims))
	}
}
