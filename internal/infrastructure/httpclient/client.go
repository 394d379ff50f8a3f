// Package httpclient issues authenticated JSON requests against the ERP REST API.
// It makes a single attempt per call: no retries, no backoff and no timeout
// other than the caller's context.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/logger"
	"github.com/erp/client/internal/infrastructure/metrics"
	"github.com/erp/client/internal/infrastructure/notify"
)

const (
	headerRequestID     = "X-Request-ID"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
	tracerName          = "github.com/erp/client/internal/infrastructure/httpclient"
)

// Doer is the contract shared by Client and test doubles
type Doer interface {
	// Do sends one request. body is JSON encoded when non-nil; a 2xx response
	// body is decoded into out when out is non-nil.
	Do(ctx context.Context, method, path, token string, body, out any) error
}

// Config describes the remote API
type Config struct {
	BaseURL   string
	UserAgent string
}

// Client is the HTTP client wrapper used by every resource hook and mutation
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	notifier   notify.Notifier
	logger     *zap.Logger
	metrics    metrics.Recorder
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNotifier sets where 401/403 messages are shown
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// New creates a client for the API rooted at cfg.BaseURL
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", cfg.BaseURL)
	}

	c := &Client{
		// No Timeout: a hung request is bounded only by the caller's context
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		notifier:   notify.Nop{},
		logger:     zap.NewNop(),
		metrics:    metrics.Nop{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds the absolute URL for path
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Do implements Doer
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any) error {
	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	log := logger.L(ctx, c.logger).With(zap.String("method", method), zap.String("path", path))

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.fail(span, fmt.Errorf("marshaling request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), bodyReader)
	if err != nil {
		return c.fail(span, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, path, 0, time.Since(start))
		log.Warn("request failed", zap.Error(err))
		return c.fail(span, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(method, path, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		return c.fail(span, fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: parseErrorMessage(raw)}
		if apiErr.Unauthorized() {
			c.notifier.Error(apiErr.Error())
			apiErr.Notified = true
		}
		log.Warn("request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Error()))
		return c.fail(span, apiErr)
	}

	log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(span, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func parseErrorMessage(raw []byte) string {
	var b errorBody
	if err := json.Unmarshal(raw, &b); err != nil {
		return ""
	}
	return b.text()
}

// Request sends one request through d and decodes the 2xx body into T
func Request[T any](ctx context.Context, d Doer, path, method, token string, body any) (T, error) {
	var out T
	if err := d.Do(ctx, method, path, token, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

var _ Doer = (*Client)(nil)
