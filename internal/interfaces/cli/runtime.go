package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/client/internal/application/mutation"
	"github.com/erp/client/internal/application/resource"
	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/config"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/logger"
	"github.com/erp/client/internal/infrastructure/metrics"
	"github.com/erp/client/internal/infrastructure/notify"
	"github.com/erp/client/internal/store"
)

// ErrNotLoggedIn is returned when a command needs a token and none is stored
var ErrNotLoggedIn = errors.New("not logged in, run 'erpctl login' first")

// runtime is everything a command needs to talk to the API
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	tokens   auth.TokenStore
	session  *auth.Session
	client   *httpclient.Client
	notifier notify.Notifier
	metrics  metrics.Recorder
	prom     *metrics.PrometheusRecorder
	env      resource.Env

	closers []func() error
}

type runtimeOptions struct {
	prometheus bool
}

func (a *App) open(ctx context.Context, ro runtimeOptions) (*runtime, error) {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return nil, err
	}
	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	rt := &runtime{
		cfg:      cfg,
		log:      log,
		notifier: notify.NewLogging(notify.NewConsole(a.errOut), log),
		metrics:  metrics.Nop{},
	}
	rt.closers = append(rt.closers, func() error {
		_ = logger.Sync(log)
		return nil
	})

	if ro.prometheus || cfg.Metrics.Enabled {
		rt.prom = metrics.NewPrometheusRecorder(metrics.PrometheusConfig{})
		rt.metrics = rt.prom
	}

	rt.tokens = a.tokens
	if rt.tokens == nil {
		if rt.tokens, err = openTokenStore(ctx, cfg, log); err != nil {
			rt.Close()
			return nil, err
		}
		if closer, ok := rt.tokens.(interface{ Close() error }); ok {
			rt.closers = append(rt.closers, closer.Close)
		}
	}

	rt.client, err = httpclient.New(
		httpclient.Config{BaseURL: cfg.API.BaseURL, UserAgent: cfg.API.UserAgent},
		httpclient.WithNotifier(rt.notifier),
		httpclient.WithLogger(log),
		httpclient.WithMetrics(rt.metrics),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.session = auth.NewSession(log)
	if err := rt.session.Load(ctx, rt.tokens); err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading access token: %w", err)
	}

	rt.env = resource.Env{
		Store:    store.New(),
		Client:   rt.client,
		Session:  rt.session,
		Notifier: rt.notifier,
		Logger:   log,
		Metrics:  rt.metrics,
	}
	return rt, nil
}

func openTokenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.TokenStore, error) {
	switch cfg.Auth.TokenStore {
	case config.TokenStoreRedis:
		store, err := auth.NewRedisTokenStore(ctx, auth.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Auth.RedisKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.TokenStoreMemory:
		return auth.NewMemoryTokenStore(auth.Token{}), nil
	default:
		return auth.NewFileTokenStore(cfg.Auth.TokenFile, log), nil
	}
}

// requireToken fails when the session holds no token
func (rt *runtime) requireToken() (string, error) {
	token := rt.session.AccessToken()
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func (rt *runtime) mutator() *mutation.Mutator {
	return mutation.NewFor(rt.client, rt.notifier, rt.log, rt.metrics)
}

// Close releases the runtime's resources in reverse order
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.log.Debug("close failed", zap.Error(err))
		}
	}
}
