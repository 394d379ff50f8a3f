package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusConfig holds configuration for the Prometheus recorder.
type PrometheusConfig struct {
	// Namespace is the prefix for all metrics. Default: "erpclient"
	Namespace string
	// Path is the URL path for the metrics endpoint. Default: /metrics
	Path string
	// HistogramBuckets are the buckets for request and fetch durations.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// PrometheusRecorder implements Recorder on a private Prometheus registry and
// can serve it over HTTP.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type PrometheusRecorder struct {
	mu       sync.Mutex
	config   PrometheusConfig
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchesTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	mutationsTotal  *prometheus.CounterVec

	server *http.Server
}

// NewPrometheusRecorder creates a recorder with its own registry
func NewPrometheusRecorder(config PrometheusConfig) *PrometheusRecorder {
	if config.Namespace == "" {
		config.Namespace = "erpclient"
	}
	if config.Path == "" {
		config.Path = "/metrics"
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	r := &PrometheusRecorder{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	r.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests sent to the ERP API.",
	}, []string{"method", "path", "status"})

	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests sent to the ERP API.",
		Buckets:   config.HistogramBuckets,
	}, []string{"method", "path"})

	r.fetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "resource_fetches_total",
		Help:      "Resource refreshes by outcome (success, failure, skipped, dropped).",
	}, []string{"resource", "outcome"})

	r.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "resource_fetch_duration_seconds",
		Help:      "Time between fetch start and the terminal transition.",
		Buckets:   config.HistogramBuckets,
	}, []string{"resource"})

	r.mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "mutations_total",
		Help:      "Create, update and delete calls by method and result.",
	}, []string{"method", "success"})

	r.registry.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.fetchesTotal,
		r.fetchDuration,
		r.mutationsTotal,
	)
	return r
}

// ObserveRequest implements Recorder
func (r *PrometheusRecorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	r.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveFetch implements Recorder
func (r *PrometheusRecorder) ObserveFetch(resource, outcome string, duration time.Duration) {
	r.fetchesTotal.WithLabelValues(resource, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeFailure {
		r.fetchDuration.WithLabelValues(resource).Observe(duration.Seconds())
	}
}

// ObserveMutation implements Recorder
func (r *PrometheusRecorder) ObserveMutation(method string, ok bool) {
	r.mutationsTotal.WithLabelValues(method, strconv.FormatBool(ok)).Inc()
}

// Registry exposes the underlying registry
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the scrape handler
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Start serves the metrics endpoint on addr until Stop is called
func (r *PrometheusRecorder) Start(addr string) (net.Addr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server != nil {
		return nil, errors.New("metrics server already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(r.config.Path, r.Handler())
	r.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv := r.server
	go func() {
		_ = srv.Serve(ln)
	}()
	return ln.Addr(), nil
}

// Stop shuts the metrics endpoint down
func (r *PrometheusRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server == nil {
		return nil
	}
	err := r.server.Shutdown(ctx)
	r.server = nil
	return err
}

var _ Recorder = (*PrometheusRecorder)(nil)
