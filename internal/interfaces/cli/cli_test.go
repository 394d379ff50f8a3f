package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/client/internal/domain/registry"
	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/testutil"
)

type harness struct {
	api    *testutil.MockAPI
	tokens *auth.MemoryTokenStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("ERPCLIENT_LOG_LEVEL", "error")
	return &harness{api: testutil.StartMockAPI(t), tokens: auth.NewMemoryTokenStore(auth.Token{})}
}

func (h *harness) loginAs(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, h.tokens.Save(context.Background(), auth.Token{AccessToken: h.api.Login(t, username)}))
}

// run executes erpctl and returns stdout and stderr
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(WithOutput(&out, &errOut), WithTokenStore(h.tokens))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--base-url", h.api.Server.URL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeList(t *testing.T, out string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "login", "-u", "admin", "-p", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")

	tok, err := h.tokens.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	out, _, err = h.run("", "whoami", "-o", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "admin", info["username"])
	assert.Equal(t, false, info["expired"])

	_, _, err = h.run("", "logout")
	require.NoError(t, err)
	_, _, err = h.run("", "whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("viewer\n", "login", "-u", "viewer")
	require.NoError(t, err)

	_, _, err = h.run("wrong\n", "login", "-u", "viewer")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	h := newHarness(t)

	t.Run("requires a token", func(t *testing.T) {
		_, _, err := h.run("", "list", "budgets")
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	h.loginAs(t, "admin")

	t.Run("budgets", func(t *testing.T) {
		out, _, err := h.run("", "list", "budgets", "-o", "json")
		require.NoError(t, err)
		assert.Len(t, decodeList(t, out), testutil.SeedCount)
	})

	t.Run("ledger accounts", func(t *testing.T) {
		out, _, err := h.run("", "list", "accounts", "--type", "ledger", "-o", "json")
		require.NoError(t, err)
		rows := decodeList(t, out)
		require.NotEmpty(t, rows)
		for _, row := range rows {
			assert.Equal(t, "ledger", row["type"])
		}
	})

	t.Run("balances", func(t *testing.T) {
		out, _, err := h.run("", "list", "account-balances", "-o", "json")
		require.NoError(t, err)
		assert.NotEmpty(t, decodeList(t, out))
	})

	t.Run("table output", func(t *testing.T) {
		out, _, err := h.run("", "list", "roles")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, out, "Administrator")
	})

	t.Run("unknown resource", func(t *testing.T) {
		_, _, err := h.run("", "list", "invoices")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "known: ")
	})

	t.Run("unknown account type", func(t *testing.T) {
		_, _, err := h.run("", "list", "accounts", "--type", "bogus")
		assert.Error(t, err)
	})
}

func TestCreateGetUpdateDelete(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	out, errOut, err := h.run("", "create", "budgets", "-o", "json", "--data", `{"name":"CLI Budget","amount":"100.50"}`)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Budget created successfully")

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "CLI Budget", created["name"])
	id := jsonNumber(created["id"])

	out, _, err = h.run("", "get", "budgets", id, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: CLI Budget")

	_, errOut, err = h.run(`{"name":"CLI Budget v2","amount":"90"}`, "update", "budgets", id, "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Budget updated successfully")

	_, errOut, err = h.run("", "delete", "budgets", id)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Budget deleted successfully")

	_, _, err = h.run("", "get", "budgets", id)
	assert.Error(t, err)
}

func TestCreate_RejectedByServer(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	_, _, err := h.run("", "create", "budgets", "--data", `{"name":"Dup","amount":"1"}`)
	require.NoError(t, err)

	_, errOut, err := h.run("", "create", "budgets", "--data", `{"name":"dup","amount":"1"}`)
	require.Error(t, err)
	assert.Contains(t, errOut, "already exists")

	_, errOut, err = h.run("", "create", "budgets", "--data", `{"amount":"1"}`)
	require.Error(t, err)
	assert.Contains(t, errOut, "name")
}

func TestCreate_BadInput(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	_, _, err := h.run("", "create", "account-balances", "--data", `{}`)
	assert.ErrorContains(t, err, "read-only")

	_, _, err = h.run("", "create", "budgets", "--data", `{not json`)
	assert.ErrorContains(t, err, "not valid JSON")

	_, _, err = h.run("", "create", "budgets")
	assert.Error(t, err, "a body flag is required")

	_, _, err = h.run("", "delete", "budgets", "abc")
	assert.ErrorContains(t, err, "invalid id")
}

func TestForbiddenWriteIsToastedOnce(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "viewer")

	_, errOut, err := h.run("", "create", "roles", "--data", `{"name":"Auditor"}`)
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, "You do not have permission"), errOut)
}

func TestDeleteRoleInUse(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	_, errOut, err := h.run("", "delete", "roles", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigned to users")
	assert.Contains(t, errOut, "assigned to users")

	out, _, err := h.run("", "list", "roles", "-o", "json")
	require.NoError(t, err)
	assert.Len(t, decodeList(t, out), 2)
}

func TestPrefetch(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	out, _, err := h.run("", "prefetch", "-o", "json", "--concurrency", "2")
	require.NoError(t, err)

	rows := decodeList(t, out)
	require.Len(t, rows, len(registry.Names()))
	for i, row := range rows {
		assert.Equal(t, registry.Names()[i], row["resource"])
		assert.Equal(t, "success", row["status"], row)
	}
}

func TestWatch(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "admin")

	out, _, err := h.run("", "watch", "budgets", "items", "--for", "300ms", "--interval", "0", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"resource": "budgets"`)
	assert.Contains(t, out, `"resource": "items"`)
	assert.Contains(t, out, `"event": "fetchSuccess"`)
	assert.NotContains(t, out, "fetchFailure")
}

func TestResources(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "resources")
	require.NoError(t, err)
	for _, name := range registry.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "/erp/accounts/budgets")
}

func jsonNumber(v any) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
