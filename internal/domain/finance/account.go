// Package finance describes the accounting resources served by the ERP API.
// Balances, budgets and variances are computed by the server; these types only
// carry what it returns.
package finance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erp/client/internal/domain/shared"
)

// AccountType selects which chart-of-accounts listing to fetch
type AccountType string

const (
	AccountTypeAll    AccountType = "all"
	AccountTypeMain   AccountType = "main"
	AccountTypeSub    AccountType = "sub"
	AccountTypeLedger AccountType = "ledger"
)

// Accounts is the CRUD endpoint set for chart-of-accounts entries
var Accounts = shared.NewEndpoints("/erp/accounts/accounts")

// AccountBalances lists computed balances per account
var AccountBalances = shared.NewEndpoints("/erp/accounts/balances")

var accountListPaths = map[AccountType]string{
	AccountTypeAll:    Accounts.GetAll(),
	AccountTypeMain:   "/erp/accounts/main-accounts",
	AccountTypeSub:    "/erp/accounts/sub-accounts",
	AccountTypeLedger: "/erp/accounts/ledger-accounts",
}

// ListPath returns the GET endpoint for this account type
func (t AccountType) ListPath() string {
	if p, ok := accountListPaths[t]; ok {
		return p
	}
	return accountListPaths[AccountTypeAll]
}

// ParseAccountType validates a user-supplied account type; empty means all
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return AccountTypeAll, nil
	}
	if _, ok := accountListPaths[t]; !ok {
		return "", fmt.Errorf("unknown account type %q (want all, main, sub or ledger)", s)
	}
	return t, nil
}

// Account is one chart-of-accounts entry
type Account struct {
	ID       shared.ID   `json:"id"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	ParentID *shared.ID  `json:"parent_id,omitempty"`
	IsActive bool        `json:"is_active"`
}

// AccountInput is the body of account create and update requests
type AccountInput struct {
	Code     string      `json:"code" validate:"required,max=32"`
	Name     string      `json:"name" validate:"required,max=128"`
	Type     AccountType `json:"type" validate:"required,oneof=main sub ledger"`
	ParentID *shared.ID  `json:"parent_id,omitempty"`
}

// AccountBalance is the server-computed balance of one account
type AccountBalance struct {
	AccountID   shared.ID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}
