// Package registry maps resource names to their endpoints so that generic
// commands can address any resource by name.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erp/client/internal/domain/finance"
	"github.com/erp/client/internal/domain/identity"
	"github.com/erp/client/internal/domain/inventory"
	"github.com/erp/client/internal/domain/shared"
)

// Resource names. They double as store slice names.
const (
	Accounts        = "accounts"
	AccountBalances = "account-balances"
	Budgets         = "budgets"
	FiscalYears     = "fiscal-years"
	Roles           = "roles"
	Users           = "users"
	Levels          = "levels"
	Items           = "items"
)

// Descriptor describes one resource
type Descriptor struct {
	Name      string
	Endpoints shared.Endpoints
	// ReadOnly resources only support listing
	ReadOnly bool
}

var descriptors = map[string]Descriptor{
	Accounts:        {Name: Accounts, Endpoints: finance.Accounts},
	AccountBalances: {Name: AccountBalances, Endpoints: finance.AccountBalances, ReadOnly: true},
	Budgets:         {Name: Budgets, Endpoints: finance.Budgets},
	FiscalYears:     {Name: FiscalYears, Endpoints: finance.FiscalYears},
	Roles:           {Name: Roles, Endpoints: identity.Roles},
	Users:           {Name: Users, Endpoints: identity.Users},
	Levels:          {Name: Levels, Endpoints: identity.Levels},
	Items:           {Name: Items, Endpoints: inventory.Items},
}

// Lookup finds a resource by name, case-insensitively
func Lookup(name string) (Descriptor, error) {
	d, ok := descriptors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists every resource in sorted order
func Names() []string {
	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every descriptor sorted by name
func All() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, name := range Names() {
		out = append(out, descriptors[name])
	}
	return out
}
