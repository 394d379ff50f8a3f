// Package middleware holds the gin middleware of the mock ERP API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/logger"
)

// RequestIDKey is both the header and the gin context key of the request ID
const RequestIDKey = "X-Request-ID"

// RequestID propagates the caller's request ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// Logger logs one line per request
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		l := logger.L(c.Request.Context(), log)
		switch {
		case c.Writer.Status() >= 500:
			l.Error("request", fields...)
		case c.Writer.Status() >= 400:
			l.Warn("request", fields...)
		default:
			l.Debug("request", fields...)
		}
	}
}
