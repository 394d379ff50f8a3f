package resource

import (
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/metrics"
	"github.com/erp/client/internal/infrastructure/notify"
	"github.com/erp/client/internal/store"
)

// Env carries the collaborators shared by every domain hook of one session
type Env struct {
	Store    *store.Store
	Client   httpclient.Doer
	Session  *auth.Session
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  metrics.Recorder
}

// Bind registers the shared slice for name and returns a hook bound to it
func Bind[T any](env Env, name string, initial T, resolver EndpointResolver, opts ...Option) (*Hook[T], error) {
	slice, err := store.Register(env.Store, name, initial)
	if err != nil {
		return nil, err
	}
	return New(DepsFor(env, slice), resolver, opts...), nil
}

// DepsFor builds hook dependencies around slice, which need not be registered
// in env.Store
func DepsFor[T any](env Env, slice *store.Slice[T]) Deps[T] {
	return Deps[T]{
		Slice:   slice,
		Client:  env.Client,
		Session: env.Session,
		Logger:  env.Logger,
		Metrics: env.Metrics,
	}
}

// Notifications returns env's notifier, or a no-op one
func (env Env) Notifications() notify.Notifier {
	if env.Notifier == nil {
		return notify.Nop{}
	}
	return env.Notifier
}
