package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erp/client/internal/application/crud"
	"github.com/erp/client/internal/domain/registry"
	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/store"
)

// watchEvent is printed for every committed fetch
type watchEvent struct {
	Time     string `json:"time"`
	Resource string `json:"resource"`
	Event    string `json:"event"`
	Records  int    `json:"records"`
	Error    string `json:"error,omitempty"`
}

func (a *App) watchCmd() *cobra.Command {
	var (
		interval    time.Duration
		duration    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch [resource...]",
		Short: "Keep resources fetched and print every change",
		Long: `Mounts a fetch for each resource (all of them by default) and prints a
line whenever one commits. Resources are refetched every --interval and
whenever the stored token changes, e.g. after 'erpctl login' in another
terminal.

With --metrics-addr (or metrics.enabled) fetch and request metrics are served
for Prometheus.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = registry.Names()
			}
			descriptors := make([]registry.Descriptor, 0, len(names))
			for _, name := range names {
				d, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				descriptors = append(descriptors, d)
			}

			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			rt, err := a.open(ctx, runtimeOptions{prometheus: metricsAddr != ""})
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.prom != nil {
				addr := metricsAddr
				if addr == "" {
					addr = rt.cfg.Metrics.Addr
				}
				bound, err := rt.prom.Start(addr)
				if err != nil {
					return fmt.Errorf("starting metrics server: %w", err)
				}
				rt.log.Info("serving metrics", zap.String("addr", bound.String()))
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = rt.prom.Stop(stopCtx)
				}()
			}

			var outMu sync.Mutex
			emit := func(ev watchEvent) {
				outMu.Lock()
				defer outMu.Unlock()
				if err := render(a.out, a.output, ev); err != nil {
					rt.log.Warn("failed to print event", zap.Error(err))
				}
			}

			collections := make([]*crud.Collection[record], 0, len(descriptors))
			for _, d := range descriptors {
				slice, err := store.Register(rt.env.Store, d.Name, []record{})
				if err != nil {
					return err
				}
				unsubscribe := slice.Subscribe(func(tr store.Transition, st store.ResourceState[[]record]) {
					if tr == store.TransitionFetchStart {
						return
					}
					emit(watchEvent{
						Time:     time.Now().Format(time.RFC3339),
						Resource: slice.Name(),
						Event:    string(tr),
						Records:  len(st.Data),
						Error:    st.ErrorMessage(),
					})
				})
				defer unsubscribe()

				c, err := crud.Use[record](rt.env, d.Name, d.Endpoints)
				if err != nil {
					return err
				}
				collections = append(collections, c)
			}

			for _, c := range collections {
				defer c.Mount(ctx)()
			}

			if fs, ok := rt.tokens.(*auth.FileTokenStore); ok && rt.cfg.Auth.Watch {
				err := fs.Watch(ctx, func() {
					if err := rt.session.Load(ctx, rt.tokens); err != nil {
						rt.log.Warn("failed to reload access token", zap.Error(err))
					}
				})
				if err != nil {
					rt.log.Warn("token file watch unavailable", zap.Error(err))
				}
			}

			if interval <= 0 {
				<-ctx.Done()
				return nil
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					for _, c := range collections {
						c.Refresh(ctx)
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refetch period, 0 disables")
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (default: until interrupted)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}
