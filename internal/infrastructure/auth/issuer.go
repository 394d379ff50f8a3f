package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingUser  = errors.New("missing user_id in claims")
)

// Issuer signs and verifies HS256 access tokens. Only the mock API holds an
// Issuer; the client itself never verifies signatures.
type Issuer struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewIssuer creates an issuer signing with secret
func NewIssuer(secret string, expiration time.Duration) *Issuer {
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &Issuer{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     "erp-mock",
		now:        time.Now,
	}
}

// IssueInput identifies the subject of a token
type IssueInput struct {
	UserID   string
	Username string
	RoleIDs  []string
}

// Issue signs an access token for input
func (i *Issuer) Issue(input IssueInput) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   input.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   input.UserID,
		Username: input.Username,
		RoleIDs:  input.RoleIDs,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies the signature and expiry of token
func (i *Issuer) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrMissingUser
	}
	return claims, nil
}

// HasRole reports whether the claims carry role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.RoleIDs {
		if r == role {
			return true
		}
	}
	return false
}
