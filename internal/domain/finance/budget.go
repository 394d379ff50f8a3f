package finance

import (
	"github.com/shopspring/decimal"

	"github.com/erp/client/internal/domain/shared"
)

// Budgets is the CRUD endpoint set for budgets
var Budgets = shared.NewEndpoints("/erp/accounts/budgets")

// FiscalYears is the CRUD endpoint set for fiscal years
var FiscalYears = shared.NewEndpoints("/erp/accounts/fiscalyear")

// Budget is a planned amount for a fiscal year
type Budget struct {
	ID           shared.ID       `json:"id"`
	Name         string          `json:"name"`
	FiscalYearID shared.ID       `json:"fiscal_year_id"`
	Amount       decimal.Decimal `json:"amount"`
	Spent        decimal.Decimal `json:"spent"`
	Status       string          `json:"status"`
}

// BudgetInput is the body of budget create and update requests
type BudgetInput struct {
	Name         string          `json:"name" validate:"required,max=128"`
	FiscalYearID shared.ID       `json:"fiscal_year_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// FiscalYear is an accounting period
type FiscalYear struct {
	ID        shared.ID `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	IsClosed  bool      `json:"is_closed"`
}

// FiscalYearInput is the body of fiscal year create and update requests
type FiscalYearInput struct {
	Name      string `json:"name" validate:"required,max=64"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
