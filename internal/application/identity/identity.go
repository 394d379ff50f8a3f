// Package identity provides the hooks behind user administration.
package identity

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/application/mutation"
	"github.com/erp/client/internal/application/resource"
	domain "github.com/erp/client/internal/domain/identity"
	"github.com/erp/client/internal/domain/registry"
	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/notify"
)

// RolesHook is the role list plus DeleteRole
type RolesHook struct {
	*crud.Collection[domain.Role]

	env      resource.Env
	notifier notify.Notifier
	logger   *zap.Logger
}

// UseRoles binds the shared role list
func UseRoles(env resource.Env) (*RolesHook, error) {
	roles, err := crud.Use[domain.Role](env, registry.Roles, domain.Roles)
	if err != nil {
		return nil, err
	}
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &RolesHook{
		Collection: roles,
		env:        env,
		notifier:   env.Notifications(),
		logger:     log.Named("roles"),
	}, nil
}

// DeleteRole deletes a role directly through the HTTP client and refreshes
// the list when the server accepts it.
func (h *RolesHook) DeleteRole(ctx context.Context, id shared.ID) error {
	env, err := httpclient.Request[httpclient.Envelope[any]](ctx, h.env.Client,
		domain.Roles.Delete(id), http.MethodDelete, h.env.Session.AccessToken(), nil)
	if err != nil {
		if !httpclient.WasNotified(err) {
			h.notifier.Error(err.Error())
		}
		h.logger.Warn("failed to delete role", zap.Int64("role_id", id), zap.Error(err))
		return err
	}
	if !env.Success {
		rejected := &RoleDeleteError{ID: id, Message: env.Message}
		h.notifier.Error(rejected.Error())
		return rejected
	}

	msg := env.Message
	if msg == "" {
		msg = mutation.FallbackSuccessMessage
	}
	h.notifier.Success(msg)
	h.Refresh(ctx)
	return nil
}

// RoleDeleteError is returned when the server refuses to delete a role
type RoleDeleteError struct {
	ID      shared.ID
	Message string
}

func (e *RoleDeleteError) Error() string {
	if e.Message == "" {
		return "role could not be deleted"
	}
	return e.Message
}

// UseUsers binds the shared user list
func UseUsers(env resource.Env) (*crud.Collection[domain.User], error) {
	return crud.Use[domain.User](env, registry.Users, domain.Users)
}

// UseLevels binds the shared access level list
func UseLevels(env resource.Env) (*crud.Collection[domain.Level], error) {
	return crud.Use[domain.Level](env, registry.Levels, domain.Levels)
}
