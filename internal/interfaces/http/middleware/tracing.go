package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin and tags each server span with the request ID and,
// once the bearer token is verified, the user.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)
	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if claims := GetClaims(c); claims != nil {
			span.SetAttributes(
				attribute.String("user_id", claims.UserID),
				attribute.String("username", claims.Username),
			)
		}
	}
}
