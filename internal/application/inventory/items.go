// Package inventory provides the hooks behind the stock screens.
package inventory

import (
	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/application/resource"
	domain "github.com/erp/client/internal/domain/inventory"
	"github.com/erp/client/internal/domain/registry"
)

// UseItems binds the shared item list
func UseItems(env resource.Env) (*crud.Collection[domain.Item], error) {
	return crud.Use[domain.Item](env, registry.Items, domain.Items)
}
