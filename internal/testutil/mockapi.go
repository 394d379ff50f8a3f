// Package testutil starts the mock ERP API in-process for tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/erp/client/internal/application/resource"
	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/httpclient"
	"github.com/erp/client/internal/infrastructure/notify"
	"github.com/erp/client/internal/interfaces/http/handler"
	"github.com/erp/client/internal/interfaces/http/mockdb"
	"github.com/erp/client/internal/interfaces/http/router"
	"github.com/erp/client/internal/store"
)

// SeedCount is the number of generated rows per table
const SeedCount = 3

// MockAPI is a seeded mock ERP API plus a client pointed at it
type MockAPI struct {
	Server *httptest.Server
	DB     *mockdb.DB
	Client *httpclient.Client
	Toasts *notify.Recorder
}

// StartMockAPI starts a seeded server that is closed when the test ends
func StartMockAPI(t *testing.T) *MockAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := mockdb.New()
	mockdb.Seed(db, mockdb.SeedOptions{Count: SeedCount, Seed: 1, Now: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)})
	srv := httptest.NewServer(router.New(router.Config{
		DB:     db,
		Issuer: auth.NewIssuer("test-secret", time.Hour),
		Logger: zaptest.NewLogger(t),
	}))
	t.Cleanup(srv.Close)

	toasts := notify.NewRecorder()
	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL}, httpclient.WithNotifier(toasts))
	require.NoError(t, err)

	return &MockAPI{Server: srv, DB: db, Client: client, Toasts: toasts}
}

// Login returns an access token for one of the seeded logins, whose
// password equals the username
func (m *MockAPI) Login(t *testing.T, username string) string {
	t.Helper()
	env, err := httpclient.Request[httpclient.Envelope[handler.LoginResponse]](context.Background(), m.Client,
		router.LoginPath, http.MethodPost, "", handler.LoginRequest{Username: username, Password: username})
	require.NoError(t, err)
	require.NotEmpty(t, env.Data.AccessToken)
	return env.Data.AccessToken
}

// Env returns a hook environment with a fresh store and a session holding token
func (m *MockAPI) Env(t *testing.T, token string) resource.Env {
	t.Helper()
	return resource.Env{
		Store:    store.New(),
		Client:   m.Client,
		Session:  auth.NewSessionWithToken(token),
		Notifier: m.Toasts,
		Logger:   zaptest.NewLogger(t),
	}
}
