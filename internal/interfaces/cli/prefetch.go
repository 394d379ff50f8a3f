package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/application/resource"
	"github.com/erp/client/internal/domain/registry"
)

type prefetchRow struct {
	Resource string `json:"resource"`
	Status   string `json:"status"`
	Records  int    `json:"records"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

func (a *App) prefetchCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "prefetch [resource...]",
		Short: "Fetch several resources concurrently and summarise the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = registry.Names()
			}
			collections := make([]*crud.Collection[record], len(names))

			rt, err := a.open(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			if _, err := rt.requireToken(); err != nil {
				return err
			}

			for i, name := range names {
				d, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				if collections[i], err = crud.Use[record](rt.env, d.Name, d.Endpoints); err != nil {
					return err
				}
			}

			rows := make([]prefetchRow, len(collections))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(concurrency, 1))
			for i, c := range collections {
				g.Go(func() error {
					start := time.Now()
					outcome := c.Refresh(ctx)
					res := c.Result()
					rows[i] = prefetchRow{
						Resource: c.Name(),
						Status:   string(outcome),
						Records:  len(res.Data),
						Duration: time.Since(start).Round(time.Millisecond).String(),
						Error:    res.ErrorMessage(),
					}
					if outcome == resource.OutcomeSkipped {
						return ErrNotLoggedIn
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if err := render(a.out, a.output, rows); err != nil {
				return err
			}
			for _, r := range rows {
				if r.Status == string(resource.OutcomeFailure) {
					return errors.New("some resources failed to fetch")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent fetches")
	return cmd
}
