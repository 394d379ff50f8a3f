package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token cannot be parsed as a JWT
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims issued by the ERP API
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	TenantID string   `json:"tenant_id,omitempty"`
	RoleIDs  []string `json:"role_ids,omitempty"`
}

// Inspect decodes the claims of accessToken without verifying its signature.
// The client never holds the signing key; the server remains the authority.
func Inspect(accessToken string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ExpiresIn returns the time left before expiry, or 0 when the token carries
// no expiry.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Expired reports whether the token expired before now
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}
