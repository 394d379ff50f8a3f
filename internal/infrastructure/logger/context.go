package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	resourceKey  contextKey = "resource"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID records the outgoing request ID on the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithResource records which cached resource the work belongs to
func WithResource(ctx context.Context, resource string) context.Context {
	return context.WithValue(ctx, resourceKey, resource)
}

// GetResource retrieves the resource name from context
func GetResource(ctx context.Context) string {
	if name, ok := ctx.Value(resourceKey).(string); ok {
		return name
	}
	return ""
}

// L returns base enriched with trace_id, span_id, request_id and resource
// found on ctx. A nil base falls back to the logger stored on ctx.
//
// Usage: logger.L(ctx, log).Debug("fetch started")
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	l := base
	if l == nil {
		l = FromContext(ctx)
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		l = l.With(
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if name := GetResource(ctx); name != "" {
		l = l.With(zap.String("resource", name))
	}
	return l
}
