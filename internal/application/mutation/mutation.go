// Package mutation issues create, update and delete requests and reports
// their outcome to the user. It never touches the resource cache; callers
// refresh the affected resource from the success callback.
package mutation

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/logger"
	"github.com/erp/client/internal/infrastructure/metrics"
	"github.com/erp/client/internal/infrastructure/notify"
)

const (
	// FallbackSuccessMessage is shown when the server sends no message
	FallbackSuccessMessage = "Operation completed successfully"
	// FallbackErrorMessage is shown when a failure carries no message
	FallbackErrorMessage = "An error occurred"
)

// RejectedError is returned when the server answered with success=false
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return FallbackErrorMessage
	}
	return e.Message
}

// IsRejected reports whether err is an application-level rejection
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// Mutator holds the collaborators shared by every mutation
type Mutator struct {
	client   httpclient.Doer
	notifier notify.Notifier
	logger   *zap.Logger
	metrics  metrics.Recorder
}

// Option configures a Mutator
type Option func(*Mutator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Mutator) {
		m.logger = l
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r metrics.Recorder) Option {
	return func(m *Mutator) {
		m.metrics = r
	}
}

// New creates a Mutator sending requests through client and toasts to notifier
func New(client httpclient.Doer, notifier notify.Notifier, opts ...Option) *Mutator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	m := &Mutator{
		client:   client,
		notifier: notifier,
		logger:   zap.NewNop(),
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mutate sends body to endpoint with method and decodes the envelope.
//
// On success=true it shows a success toast and calls onSuccess exactly once.
// On success=false it returns a *RejectedError; on transport failure it
// returns the transport error. Both failures show an error toast, except
// 401/403 responses which the HTTP client has already shown.
func Mutate[T any](ctx context.Context, m *Mutator, endpoint, token string, body any, onSuccess func(), method string) (T, error) {
	log := logger.L(ctx, m.logger).With(zap.String("method", method), zap.String("endpoint", endpoint))

	env, err := httpclient.Request[httpclient.Envelope[T]](ctx, m.client, endpoint, method, token, body)
	if err == nil && !env.Success {
		err = &RejectedError{Message: env.Message}
	}
	if err != nil {
		m.handleError(log, err)
		m.metrics.ObserveMutation(method, false)
		var zero T
		return zero, err
	}

	msg := env.Message
	if msg == "" {
		msg = FallbackSuccessMessage
	}
	m.notifier.Success(msg)
	m.metrics.ObserveMutation(method, true)
	log.Info("mutation succeeded", zap.String("message", msg))

	if onSuccess != nil {
		onSuccess()
	}
	return env.Data, nil
}

func (m *Mutator) handleError(log *zap.Logger, err error) {
	if httpclient.WasNotified(err) {
		log.Warn("mutation refused", zap.Error(err))
		return
	}
	msg := err.Error()
	if msg == "" {
		msg = FallbackErrorMessage
	}
	m.notifier.Error(msg)
	log.Warn("mutation failed", zap.Bool("rejected", IsRejected(err)), zap.Error(err))
}

// Create posts body to the resource's add endpoint
func Create[T any](ctx context.Context, m *Mutator, e shared.Endpoints, token string, body any, onSuccess func()) (T, error) {
	return Mutate[T](ctx, m, e.Add(), token, body, onSuccess, http.MethodPost)
}

// Update puts body to the record's update endpoint
func Update[T any](ctx context.Context, m *Mutator, e shared.Endpoints, id shared.ID, token string, body any, onSuccess func()) (T, error) {
	return Mutate[T](ctx, m, e.Update(id), token, body, onSuccess, http.MethodPut)
}

// Delete removes the record through its delete endpoint
func Delete(ctx context.Context, m *Mutator, e shared.Endpoints, id shared.ID, token string, onSuccess func()) error {
	_, err := Mutate[any](ctx, m, e.Delete(id), token, nil, onSuccess, http.MethodDelete)
	return err
}

// NewFor creates a Mutator from the collaborators of a hook environment
func NewFor(client httpclient.Doer, notifier notify.Notifier, log *zap.Logger, rec metrics.Recorder) *Mutator {
	opts := []Option{}
	if log != nil {
		opts = append(opts, WithLogger(log))
	}
	if rec != nil {
		opts = append(opts, WithMetrics(rec))
	}
	return New(client, notifier, opts...)
}
