// Package finance provides the hooks behind the accounting screens.
package finance

import (
	"context"
	"sync"

	"github.com/erp/client/internal/application/resource"
	domain "github.com/erp/client/internal/domain/finance"
	"github.com/erp/client/internal/domain/registry"
	"github.com/erp/client/internal/store"
)

// AccountsHook lists accounts of one type together with their balances.
// The account list lives in the shared store; the balances are private to
// this hook.
type AccountsHook struct {
	accounts *resource.Hook[[]domain.Account]
	balances *resource.Hook[[]domain.AccountBalance]

	mu          sync.Mutex
	accountType domain.AccountType
}

// AccountsResult is the combined view of an AccountsHook
type AccountsResult struct {
	Accounts resource.Result[[]domain.Account]
	Balances resource.Result[[]domain.AccountBalance]
}

// UseAccounts binds the account list for accountType and a balance fetch
func UseAccounts(env resource.Env, accountType domain.AccountType) (*AccountsHook, error) {
	h := &AccountsHook{accountType: accountType}

	accounts, err := resource.Bind(env, registry.Accounts, []domain.Account{}, h.listPath,
		resource.WithDependencies(accountType))
	if err != nil {
		return nil, err
	}
	h.accounts = accounts

	balanceSlice := store.NewSlice(registry.AccountBalances, []domain.AccountBalance{})
	h.balances = resource.New(resource.DepsFor(env, balanceSlice),
		resource.Static(domain.AccountBalances.GetAll()))
	return h, nil
}

func (h *AccountsHook) listPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.accountType.ListPath()
}

// AccountType returns the type currently listed
func (h *AccountsHook) AccountType() domain.AccountType {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.accountType
}

// SetAccountType switches the listed type; a mounted hook refetches
func (h *AccountsHook) SetAccountType(t domain.AccountType) bool {
	h.mu.Lock()
	h.accountType = t
	h.mu.Unlock()
	return h.accounts.SetDeps(t)
}

// Result returns both views
func (h *AccountsHook) Result() AccountsResult {
	return AccountsResult{Accounts: h.accounts.Result(), Balances: h.balances.Result()}
}

// Refresh refetches accounts, then balances
func (h *AccountsHook) Refresh(ctx context.Context) {
	h.accounts.Refresh(ctx)
	h.balances.Refresh(ctx)
}

// Mount mounts both underlying hooks
func (h *AccountsHook) Mount(ctx context.Context) (unmount func()) {
	unmountAccounts := h.accounts.Mount(ctx)
	unmountBalances := h.balances.Mount(ctx)
	return func() {
		unmountAccounts()
		unmountBalances()
	}
}
