// Package resource binds a store slice to the ERP API.
//
// A Hook fetches one resource into its slice whenever it is mounted, whenever
// the auth session changes and whenever its dependency values change. Any
// number of hooks may share a slice; the last fetch to complete wins.
package resource

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/logger"
	"github.com/erp/client/internal/infrastructure/metrics"
	"github.com/erp/client/internal/store"
)

// FallbackErrorMessage is stored when a failed fetch carries no usable message
const FallbackErrorMessage = "An error occurred"

// EndpointResolver returns the GET path to fetch. It is called on every
// refresh so the path may depend on hook parameters.
type EndpointResolver func() string

// Static resolves to a fixed path
func Static(path string) EndpointResolver {
	return func() string { return path }
}

// Deps are the collaborators a hook reads and writes
type Deps[T any] struct {
	Slice   *store.Slice[T]
	Client  httpclient.Doer
	Session *auth.Session
	Logger  *zap.Logger
	Metrics metrics.Recorder
}

// Result is the hook's view of its resource plus the refresh it is bound to
type Result[T any] struct {
	store.ResourceState[T]
	Refresh func(ctx context.Context) Outcome
}

// Outcome reports how a refresh ended
type Outcome string

const (
	// OutcomeSkipped means the auth guard prevented the fetch
	OutcomeSkipped Outcome = metrics.OutcomeSkipped
	OutcomeSuccess Outcome = metrics.OutcomeSuccess
	OutcomeFailure Outcome = metrics.OutcomeFailure
	// OutcomeDropped means the hook was unmounted while the fetch was in flight
	// and the result was discarded
	OutcomeDropped Outcome = metrics.OutcomeDropped
)

// Option configures a Hook
type Option func(*options)

type options struct {
	name string
	deps []any
}

// WithName overrides the resource name used in logs and metrics.
// It defaults to the slice name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDependencies sets the initial dependency values compared by SetDeps
func WithDependencies(values ...any) Option {
	return func(o *options) {
		o.deps = values
	}
}

// Hook is the generic fetch binding for one resource.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Hook[T any] struct {
	slice    *store.Slice[T]
	client   httpclient.Doer
	session  *auth.Session
	logger   *zap.Logger
	metrics  metrics.Recorder
	resolver EndpointResolver
	name     string

	mu         sync.Mutex
	generation uint64
	inflight   map[uint64]context.CancelFunc
	nextReq    uint64
	deps       []any
	mounted    bool
	mountCtx   context.Context
	wg         sync.WaitGroup
}

// New creates a hook. It does nothing until Refresh or Mount is called.
func New[T any](deps Deps[T], resolver EndpointResolver, opts ...Option) *Hook[T] {
	o := options{name: deps.Slice.Name()}
	for _, opt := range opts {
		opt(&o)
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	return &Hook[T]{
		slice:    deps.Slice,
		client:   deps.Client,
		session:  deps.Session,
		logger:   log.With(zap.String("resource", o.name)),
		metrics:  rec,
		resolver: resolver,
		name:     o.name,
		inflight: make(map[uint64]context.CancelFunc),
		deps:     o.deps,
	}
}

// Name returns the resource name
func (h *Hook[T]) Name() string {
	return h.name
}

// Result returns the shared cache state bound to Refresh
func (h *Hook[T]) Result() Result[T] {
	return Result[T]{ResourceState: h.slice.State(), Refresh: h.Refresh}
}

// Refresh fetches the resource into the slice unless the auth session is not
// ready. Fetch failures are recorded in the slice, never returned.
func (h *Hook[T]) Refresh(ctx context.Context) Outcome {
	st := h.session.State()
	if st.IsFetchingLocalToken || st.Token.AccessToken == "" {
		h.logger.Debug("refresh skipped",
			zap.Bool("fetching_local_token", st.IsFetchingLocalToken))
		h.metrics.ObserveFetch(h.name, metrics.OutcomeSkipped, 0)
		return OutcomeSkipped
	}

	ctx, id, generation := h.begin(ctx)
	defer h.end(id)

	ctx = logger.WithResource(ctx, h.name)
	log := logger.L(ctx, h.logger)
	path := h.resolver()

	h.slice.FetchStart()
	log.Debug("fetch started", zap.String("path", path))
	start := time.Now()

	env, err := h.fetch(ctx, path, st.Token.AccessToken)

	if !h.current(generation) {
		log.Debug("fetch result dropped after unmount", zap.Error(err))
		h.metrics.ObserveFetch(h.name, metrics.OutcomeDropped, time.Since(start))
		return OutcomeDropped
	}

	if err != nil {
		msg := errorMessage(err)
		h.slice.FetchFailure(msg)
		log.Warn("fetch failed", zap.String("path", path), zap.Error(err))
		h.metrics.ObserveFetch(h.name, metrics.OutcomeFailure, time.Since(start))
		return OutcomeFailure
	}

	h.slice.FetchSuccess(env.Data)
	log.Debug("fetch succeeded", zap.String("path", path), zap.Duration("duration", time.Since(start)))
	h.metrics.ObserveFetch(h.name, metrics.OutcomeSuccess, time.Since(start))
	return OutcomeSuccess
}

// fetch issues the request and turns a panicking client into an error
func (h *Hook[T]) fetch(ctx context.Context, path, token string) (env httpclient.Envelope[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return httpclient.Request[httpclient.Envelope[T]](ctx, h.client, path, http.MethodGet, token, nil)
}

// Mount starts the hook: it refreshes now, after every auth session change
// and after every SetDeps call that changes the dependency values. The
// returned function unmounts the hook, cancels in-flight fetches, discards
// their results and waits for them to return.
func (h *Hook[T]) Mount(ctx context.Context) (unmount func()) {
	mountCtx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.mounted = true
	h.mountCtx = mountCtx
	h.mu.Unlock()

	unsubscribe := h.session.Subscribe(func(auth.State) {
		h.spawn()
	})
	h.spawn()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()

			h.mu.Lock()
			h.mounted = false
			h.generation++
			for _, cancelReq := range h.inflight {
				cancelReq()
			}
			h.mu.Unlock()

			cancel()
			h.wg.Wait()
		})
	}
}

// SetDeps replaces the dependency values. When they differ from the previous
// values and the hook is mounted, a refresh is started. It reports whether
// the values changed.
func (h *Hook[T]) SetDeps(values ...any) bool {
	h.mu.Lock()
	if reflect.DeepEqual(h.deps, values) {
		h.mu.Unlock()
		return false
	}
	h.deps = values
	h.mu.Unlock()

	h.spawn()
	return true
}

// spawn runs a refresh in the background while the hook is mounted
func (h *Hook[T]) spawn() {
	h.mu.Lock()
	if !h.mounted {
		h.mu.Unlock()
		return
	}
	ctx := h.mountCtx
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		h.Refresh(ctx)
	}()
}

func (h *Hook[T]) begin(parent context.Context) (context.Context, uint64, uint64) {
	ctx, cancel := context.WithCancel(parent)

	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextReq
	h.nextReq++
	h.inflight[id] = cancel
	return ctx, id, h.generation
}

func (h *Hook[T]) end(id uint64) {
	h.mu.Lock()
	cancel := h.inflight[id]
	delete(h.inflight, id)
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *Hook[T]) current(generation uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation == generation
}

// panicError carries a value recovered from a panicking fetch
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return ""
}

func (p *panicError) Unwrap() error {
	err, _ := p.value.(error)
	return err
}

// errorMessage returns the message stored for a failed fetch
func errorMessage(err error) string {
	if err == nil {
		return FallbackErrorMessage
	}
	var pe *panicError
	if errors.As(err, &pe) {
		if _, ok := pe.value.(error); !ok {
			return FallbackErrorMessage
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
