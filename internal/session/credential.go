package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCredential   = errors.New("no session credential")
	ErrExpired        = errors.New("session credential expired")
	ErrEmptyToken     = errors.New("empty token")
	ErrSecretMismatch = errors.New("store secret does not match")
	ErrSecretRequired = errors.New("store is sealed, a store secret is required")
)

// Credential is the bearer token plus its expiry. ExpiresAt is zero when the
// token carries no exp claim.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether c has a known expiry at or before now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseExpiry returns the exp claim of a JWT without verifying its signature.
// Opaque tokens and tokens without exp yield the zero time.
func ParseExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
