// Package cli implements erpctl, a command line client for the ERP API.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erp/client/internal/infrastructure/auth"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// App holds the global flags and the I/O of one erpctl invocation
type App struct {
	configFile string
	baseURL    string
	output     string
	verbose    bool

	out    io.Writer
	errOut io.Writer
	// tokens overrides the configured token store
	tokens auth.TokenStore
}

// Option configures an App
type Option func(*App)

// WithOutput redirects command output and notifications
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithTokenStore replaces the configured token store
func WithTokenStore(store auth.TokenStore) Option {
	return func(a *App) {
		a.tokens = store
	}
}

// NewRootCommand builds the erpctl command tree
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &App{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "erpctl",
		Short: "Command line client for the ERP API",
		Long: `erpctl reads and edits ERP resources (accounts, budgets, fiscal years,
roles, users, levels and inventory items) through the ERP REST API.

Resources are fetched into a local cache and can be watched for changes.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default ./config.toml or ~/.erpclient/config.toml)")
	flags.StringVar(&a.baseURL, "base-url", "", "ERP API base URL, overrides api.base_url")
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.getCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.watchCmd(),
		a.prefetchCmd(),
		a.resourcesCmd(),
	)
	return root
}

// Execute runs erpctl with ctx, which is cancelled on interrupt by the caller
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
