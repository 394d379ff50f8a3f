package mutation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/notify"
)

type created struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var budgets = shared.NewEndpoints("/erp/accounts/budgets")

func setup(t *testing.T, handler http.HandlerFunc) (*Mutator, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	toasts := notify.NewRecorder()
	c, err := httpclient.New(httpclient.Config{BaseURL: srv.URL}, httpclient.WithNotifier(toasts))
	require.NoError(t, err)
	return New(c, toasts), toasts
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestMutate_SuccessCallsCallbackOnce(t *testing.T) {
	var gotBody map[string]any
	m, toasts := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/erp/accounts/budgets/add", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Created","data":{"id":7,"name":"Q1 Budget"}}`)
	})

	calls := 0
	got, err := Create[created](context.Background(), m, budgets, "tok",
		map[string]string{"name": "Q1 Budget"}, func() { calls++ })

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, created{ID: 7, Name: "Q1 Budget"}, got)
	assert.Equal(t, "Q1 Budget", gotBody["name"])
	assert.Equal(t, []notify.Toast{{Level: notify.LevelSuccess, Message: "Created"}}, toasts.Toasts())
}

func TestMutate_SuccessFallbackMessage(t *testing.T) {
	m, toasts := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/erp/accounts/budgets/3/update", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"","data":null}`)
	})

	_, err := Update[created](context.Background(), m, budgets, 3, "tok", map[string]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []notify.Toast{{Level: notify.LevelSuccess, Message: FallbackSuccessMessage}}, toasts.Toasts())
}

func TestMutate_RejectedNeverCallsCallback(t *testing.T) {
	m, toasts := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Name already exists","data":null}`)
	})

	calls := 0
	_, err := Create[created](context.Background(), m, budgets, "tok", map[string]string{"name": "dup"}, func() { calls++ })

	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Equal(t, "Name already exists", err.Error())
	assert.Zero(t, calls)
	assert.Equal(t, []notify.Toast{{Level: notify.LevelError, Message: "Name already exists"}}, toasts.Toasts())
}

func TestMutate_TransportFailure(t *testing.T) {
	m, toasts := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"message":"database unavailable"}`)
	})

	calls := 0
	err := Delete(context.Background(), m, budgets, 9, "tok", func() { calls++ })

	require.Error(t, err)
	assert.False(t, IsRejected(err))
	assert.Equal(t, http.StatusInternalServerError, httpclient.StatusCode(err))
	assert.Zero(t, calls)
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
	assert.Equal(t, "database unavailable", toasts.Toasts()[0].Message)
}

func TestMutate_AuthErrorToastedOnce(t *testing.T) {
	m, toasts := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"success":false,"message":"Insufficient permissions"}`)
	})

	err := Delete(context.Background(), m, budgets, 1, "tok", nil)

	require.Error(t, err)
	assert.True(t, httpclient.IsAuthError(err))
	assert.Equal(t, []notify.Toast{{Level: notify.LevelError, Message: "Insufficient permissions"}}, toasts.Toasts())
}

func TestRejectedError_Fallback(t *testing.T) {
	assert.Equal(t, FallbackErrorMessage, (&RejectedError{}).Error())
}
