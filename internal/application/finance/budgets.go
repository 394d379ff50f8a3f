package finance

import (
	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/application/resource"
	domain "github.com/erp/client/internal/domain/finance"
	"github.com/erp/client/internal/domain/registry"
)

// UseBudgets binds the shared budget list
func UseBudgets(env resource.Env) (*crud.Collection[domain.Budget], error) {
	return crud.Use[domain.Budget](env, registry.Budgets, domain.Budgets)
}

// UseFiscalYears binds the shared fiscal year list
func UseFiscalYears(env resource.Env) (*crud.Collection[domain.FiscalYear], error) {
	return crud.Use[domain.FiscalYear](env, registry.FiscalYears, domain.FiscalYears)
}
