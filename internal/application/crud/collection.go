// Package crud pairs a list hook with the create, update and delete calls of
// the same resource. Mutations refresh the list on success.
package crud

import (
	"context"
	"net/http"

	"github.com/erp/client/internal/application/mutation"
	"github.com/erp/client/internal/application/resource"
	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/httpclient"
)

// Collection is a cached list of T with its mutations
type Collection[T any] struct {
	*resource.Hook[[]T]

	endpoints shared.Endpoints
	client    httpclient.Doer
	session   *auth.Session
	mutator   *mutation.Mutator
}

// Use binds the shared slice name to the list endpoint of endpoints
func Use[T any](env resource.Env, name string, endpoints shared.Endpoints, opts ...resource.Option) (*Collection[T], error) {
	hook, err := resource.Bind(env, name, []T{}, resource.Static(endpoints.GetAll()), opts...)
	if err != nil {
		return nil, err
	}
	return &Collection[T]{
		Hook:      hook,
		endpoints: endpoints,
		client:    env.Client,
		session:   env.Session,
		mutator:   mutation.NewFor(env.Client, env.Notifications(), env.Logger, env.Metrics),
	}, nil
}

// Endpoints returns the resource's endpoint set
func (c *Collection[T]) Endpoints() shared.Endpoints {
	return c.endpoints
}

// Items returns the cached list
func (c *Collection[T]) Items() []T {
	return c.Result().Data
}

// Get fetches one record without touching the cache
func (c *Collection[T]) Get(ctx context.Context, id shared.ID) (T, error) {
	env, err := httpclient.Request[httpclient.Envelope[T]](ctx, c.client, c.endpoints.GetByID(id), http.MethodGet, c.session.AccessToken(), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Create adds a record and refreshes the list
func (c *Collection[T]) Create(ctx context.Context, body any) (T, error) {
	return mutation.Create[T](ctx, c.mutator, c.endpoints, c.session.AccessToken(), body, c.refresher(ctx))
}

// Update modifies a record and refreshes the list
func (c *Collection[T]) Update(ctx context.Context, id shared.ID, body any) (T, error) {
	return mutation.Update[T](ctx, c.mutator, c.endpoints, id, c.session.AccessToken(), body, c.refresher(ctx))
}

// Delete removes a record and refreshes the list
func (c *Collection[T]) Delete(ctx context.Context, id shared.ID) error {
	return mutation.Delete(ctx, c.mutator, c.endpoints, id, c.session.AccessToken(), c.refresher(ctx))
}

func (c *Collection[T]) refresher(ctx context.Context) func() {
	return func() {
		c.Refresh(ctx)
	}
}
