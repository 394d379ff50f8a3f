package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Issuer *auth.Issuer
	// SkipPaths do not require a token
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth rejects requests without a valid bearer token with 401
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Issuer.Validate(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			log.Debug("token rejected", zap.String("path", path), zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Session expired, please log in again")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token lacks role with 403
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims set by JWTAuth, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
