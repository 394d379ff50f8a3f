package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/application/finance"
	"github.com/erp/client/internal/application/identity"
	"github.com/erp/client/internal/application/inventory"
	"github.com/erp/client/internal/application/resource"
	domainfinance "github.com/erp/client/internal/domain/finance"
	domainidentity "github.com/erp/client/internal/domain/identity"
	"github.com/erp/client/internal/domain/registry"
	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/infrastructure/httpclient"
)

// record is the schema-less form used for resources edited from the CLI
type record = map[string]any

type refresher[T any] interface {
	Refresh(ctx context.Context) resource.Outcome
	Result() resource.Result[T]
}

// refreshed fetches h and returns its data, turning the cached error into a
// returned one
func refreshed[T any](ctx context.Context, h refresher[T]) (T, error) {
	var zero T
	if h.Refresh(ctx) == resource.OutcomeSkipped {
		return zero, ErrNotLoggedIn
	}
	res := h.Result()
	if res.Error != nil {
		return zero, errors.New(*res.Error)
	}
	return res.Data, nil
}

// list fetches one resource through its typed hook
func list(ctx context.Context, env resource.Env, d registry.Descriptor, accountType domainfinance.AccountType) (any, error) {
	switch d.Name {
	case registry.Accounts, registry.AccountBalances:
		h, err := finance.UseAccounts(env, accountType)
		if err != nil {
			return nil, err
		}
		h.Refresh(ctx)
		res := h.Result()
		if d.Name == registry.AccountBalances {
			if res.Balances.Error != nil {
				return nil, errors.New(*res.Balances.Error)
			}
			return res.Balances.Data, nil
		}
		if res.Accounts.Error != nil {
			return nil, errors.New(*res.Accounts.Error)
		}
		return res.Accounts.Data, nil
	case registry.Budgets:
		return fetchCollection(ctx, finance.UseBudgets, env)
	case registry.FiscalYears:
		return fetchCollection(ctx, finance.UseFiscalYears, env)
	case registry.Roles:
		h, err := identity.UseRoles(env)
		if err != nil {
			return nil, err
		}
		return refreshed[[]domainidentity.Role](ctx, h)
	case registry.Users:
		return fetchCollection(ctx, identity.UseUsers, env)
	case registry.Levels:
		return fetchCollection(ctx, identity.UseLevels, env)
	case registry.Items:
		return fetchCollection(ctx, inventory.UseItems, env)
	default:
		return fetchCollection(ctx, func(env resource.Env) (*crud.Collection[record], error) {
			return crud.Use[record](env, d.Name, d.Endpoints)
		}, env)
	}
}

func fetchCollection[T any](ctx context.Context, use func(resource.Env) (*crud.Collection[T], error), env resource.Env) (any, error) {
	c, err := use(env)
	if err != nil {
		return nil, err
	}
	return refreshed[[]T](ctx, c)
}

func (a *App) listCmd() *cobra.Command {
	var accountType string
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List the records of a resource",
		Long: `Lists the records of a resource. Run 'erpctl resources' for the
resource names.

Examples:
  erpctl list budgets
  erpctl list accounts --type ledger
  erpctl list roles -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := registry.Lookup(args[0])
			if err != nil {
				return err
			}
			t, err := domainfinance.ParseAccountType(accountType)
			if err != nil {
				return err
			}

			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			if _, err := rt.requireToken(); err != nil {
				return err
			}

			data, err := list(cmd.Context(), rt.env, d, t)
			if err != nil {
				return err
			}
			return render(a.out, a.output, data)
		},
	}
	cmd.Flags().StringVar(&accountType, "type", string(domainfinance.AccountTypeAll), "account type for accounts: all, main, sub or ledger")
	return cmd
}

func (a *App) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, id, err := lookupRecord(args[0], args[1])
			if err != nil {
				return err
			}

			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			token, err := rt.requireToken()
			if err != nil {
				return err
			}

			env, err := httpclient.Request[httpclient.Envelope[record]](cmd.Context(), rt.client,
				d.Endpoints.GetByID(id), http.MethodGet, token, nil)
			if err != nil {
				return err
			}
			if !env.Success {
				return errors.New(env.Message)
			}
			return render(a.out, a.output, env.Data)
		},
	}
}

func (a *App) createCmd() *cobra.Command {
	var data, file string
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create a record from JSON",
		Long: `Creates a record. The JSON body comes from --data, or from --file
('-' reads stdin).

Example:
  erpctl create budgets --data '{"name":"Q3 Marketing","fiscal_year_id":2,"amount":"5000"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupWritable(args[0])
			if err != nil {
				return err
			}
			body, err := readBody(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			return a.withCollection(cmd.Context(), d, func(ctx context.Context, c *crud.Collection[record]) error {
				created, err := c.Create(ctx, body)
				if err != nil {
					return err
				}
				return render(a.out, a.output, created)
			})
		},
	}
	addBodyFlags(cmd, &data, &file)
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var data, file string
	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Update a record from JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, id, err := lookupRecord(args[0], args[1])
			if err != nil {
				return err
			}
			if d.ReadOnly {
				return fmt.Errorf("%s is read-only", d.Name)
			}
			body, err := readBody(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			return a.withCollection(cmd.Context(), d, func(ctx context.Context, c *crud.Collection[record]) error {
				updated, err := c.Update(ctx, id, body)
				if err != nil {
					return err
				}
				return render(a.out, a.output, updated)
			})
		},
	}
	addBodyFlags(cmd, &data, &file)
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, id, err := lookupRecord(args[0], args[1])
			if err != nil {
				return err
			}
			if d.ReadOnly {
				return fmt.Errorf("%s is read-only", d.Name)
			}

			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			if _, err := rt.requireToken(); err != nil {
				return err
			}

			if d.Name == registry.Roles {
				roles, err := identity.UseRoles(rt.env)
				if err != nil {
					return err
				}
				return roles.DeleteRole(cmd.Context(), id)
			}

			c, err := crud.Use[record](rt.env, d.Name, d.Endpoints)
			if err != nil {
				return err
			}
			return c.Delete(cmd.Context(), id)
		},
	}
}

func (a *App) resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the resources erpctl knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Name     string `json:"name"`
				Path     string `json:"path"`
				ReadOnly bool   `json:"read_only"`
			}
			rows := make([]row, 0, len(registry.Names()))
			for _, d := range registry.All() {
				rows = append(rows, row{Name: d.Name, Path: d.Endpoints.Base(), ReadOnly: d.ReadOnly})
			}
			return render(a.out, a.output, rows)
		},
	}
}

// withCollection opens a runtime and runs fn against a schema-less
// collection for d
func (a *App) withCollection(ctx context.Context, d registry.Descriptor, fn func(context.Context, *crud.Collection[record]) error) error {
	rt, err := a.open(ctx, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()
	if _, err := rt.requireToken(); err != nil {
		return err
	}

	c, err := crud.Use[record](rt.env, d.Name, d.Endpoints)
	if err != nil {
		return err
	}
	return fn(ctx, c)
}

func lookupWritable(name string) (registry.Descriptor, error) {
	d, err := registry.Lookup(name)
	if err != nil {
		return d, err
	}
	if d.ReadOnly {
		return d, fmt.Errorf("%s is read-only", d.Name)
	}
	return d, nil
}

func lookupRecord(name, rawID string) (registry.Descriptor, shared.ID, error) {
	d, err := registry.Lookup(name)
	if err != nil {
		return d, 0, err
	}
	id, err := shared.ParseID(rawID)
	if err != nil || id <= 0 {
		return d, 0, fmt.Errorf("invalid id %q", rawID)
	}
	return d, id, nil
}

func addBodyFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVarP(file, "file", "f", "", "read the JSON request body from a file, '-' for stdin")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

// readBody returns the request body as raw JSON so it is sent unchanged
func readBody(stdin io.Reader, data, file string) (json.RawMessage, error) {
	var raw []byte
	switch {
	case data != "":
		raw = []byte(data)
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		raw = b
	default:
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		raw = b
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid JSON")
	}
	return raw, nil
}
