package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the token failed signature verification or
// carries a malformed or missing claim.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and validates HS256-signed access tokens.
// The payload carries a single email claim. Tokens have no expiry and there
// is no revocation; validity against the live user set is the profile
// service's concern, not the token's.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService signing with the given shared secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue produces a signed token embedding the email claim.
func (t *TokenService) Issue(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token signature and returns the embedded email.
// Fails with ErrInvalidToken when the signature does not verify, the signing
// method is not HMAC, or the email claim is absent or empty.
func (t *TokenService) Decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}

	return email, nil
}
