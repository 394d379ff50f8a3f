package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/client/internal/infrastructure/notify"
)

type budget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, baseURL string, n notify.Notifier) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, UserAgent: "test-agent"}, WithNotifier(n))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
	})

	t.Run("rejects relative base URL", func(t *testing.T) {
		_, err := New(Config{BaseURL: "/erp"})
		assert.Error(t, err)
	})

	t.Run("joins base and path", func(t *testing.T) {
		c, err := New(Config{BaseURL: "http://erp.local/api/"})
		require.NoError(t, err)
		assert.Equal(t, "http://erp.local/api/erp/accounts/budgets", c.URL("/erp/accounts/budgets"))
		assert.Equal(t, "http://erp.local/api/erp/roles", c.URL("erp/roles"))
	})
}

func TestRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/erp/accounts/budgets", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[{"id":7,"name":"Q1 Budget"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, notify.Nop{})

	env, err := Request[Envelope[[]budget]](context.Background(), c, "/erp/accounts/budgets", http.MethodGet, "tok-1", nil)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Message)
	assert.Equal(t, []budget{{ID: 7, Name: "Q1 Budget"}}, env.Data)
}

func TestRequest_NoTokenNoAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"message":"","data":null}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, notify.Nop{})
	_, err := Request[Envelope[any]](context.Background(), c, "/erp/auth/login", http.MethodPost, "", map[string]string{"u": "x"})
	assert.NoError(t, err)
}

func TestRequest_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Q1 Budget", got["name"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"Created","data":{"id":7,"name":"Q1 Budget"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, notify.Nop{})
	env, err := Request[Envelope[budget]](context.Background(), c, "/erp/accounts/budgets/add", http.MethodPost, "t", map[string]string{"name": "Q1 Budget"})
	require.NoError(t, err)
	assert.Equal(t, 7, env.Data.ID)
}

func TestRequest_AuthorizationFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"401 with envelope message", http.StatusUnauthorized, `{"success":false,"message":"Session expired","data":null}`, "Session expired"},
		{"403 with nested error", http.StatusForbidden, `{"success":false,"error":{"code":"ERR_FORBIDDEN","message":"No access to budgets"}}`, "No access to budgets"},
		{"401 without body", http.StatusUnauthorized, ``, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			rec := notify.NewRecorder()
			c := newTestClient(t, server.URL, rec)

			_, err := Request[Envelope[any]](context.Background(), c, "/erp/roles", http.MethodGet, "t", nil)
			require.Error(t, err)
			assert.True(t, IsAuthError(err))
			assert.True(t, WasNotified(err))
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, []notify.Toast{{Level: notify.LevelError, Message: tt.message}}, rec.Toasts())
		})
	}
}

func TestRequest_ServerErrorIsNotToasted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"database unavailable","data":null}`))
	}))
	defer server.Close()

	rec := notify.NewRecorder()
	c := newTestClient(t, server.URL, rec)

	_, err := Request[Envelope[any]](context.Background(), c, "/erp/roles", http.MethodGet, "t", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "database unavailable", apiErr.Error())
	assert.False(t, IsAuthError(err))
	assert.Empty(t, rec.Toasts())
}

func TestRequest_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, notify.Nop{})
	_, err := Request[Envelope[any]](context.Background(), c, "/erp/roles", http.MethodGet, "t", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRequest_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := notify.NewRecorder()
	c := newTestClient(t, url, rec)

	_, err := Request[Envelope[any]](context.Background(), c, "/erp/roles", http.MethodGet, "t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /erp/roles")
	assert.Equal(t, 0, StatusCode(err))
	assert.Empty(t, rec.Toasts())
}

func TestRequest_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, notify.Nop{})
	_, err := Request[Envelope[any]](context.Background(), c, "/erp/roles", http.MethodGet, "t", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
