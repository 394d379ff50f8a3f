package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Load(context.Context) (Token, error) {
	return Token{}, errors.New("disk on fire")
}
func (failingStore) Save(context.Context, Token) error { return nil }
func (failingStore) Clear(context.Context) error       { return nil }

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession(nil)
	assert.True(t, s.State().IsFetchingLocalToken, "starts while the local token is fetched")
	assert.False(t, s.State().Ready())

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer unsubscribe()

	require.NoError(t, s.Load(context.Background(), NewMemoryTokenStore(Token{AccessToken: "abc"})))

	assert.Equal(t, "abc", s.AccessToken())
	assert.True(t, s.State().Ready())
	require.Len(t, seen, 1, "BeginLoad on a fetching session is not a change")
	assert.Equal(t, State{Token: Token{AccessToken: "abc"}}, seen[0])
}

func TestSession_SetTokenNotifiesOnlyOnChange(t *testing.T) {
	s := NewSessionWithToken("abc")

	calls := 0
	s.Subscribe(func(State) { calls++ })

	s.SetToken(Token{AccessToken: "abc"})
	assert.Equal(t, 0, calls)

	s.SetToken(Token{AccessToken: "def"})
	s.BeginLoad()
	assert.Equal(t, 2, calls)
	assert.True(t, s.State().IsFetchingLocalToken)
}

func TestSession_LoadFailureLeavesEmptyToken(t *testing.T) {
	s := NewSessionWithToken("stale")

	err := s.Load(context.Background(), failingStore{})
	require.Error(t, err)

	st := s.State()
	assert.False(t, st.IsFetchingLocalToken)
	assert.Empty(t, st.Token.AccessToken)
	assert.False(t, st.Ready())
}

func TestSession_Unsubscribe(t *testing.T) {
	s := NewSessionWithToken("")
	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	unsubscribe()
	s.SetToken(Token{AccessToken: "x"})
	assert.Equal(t, 0, calls)
}

func TestFileTokenStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileTokenStore(path, nil)

	t.Run("missing file is an empty token", func(t *testing.T) {
		tok, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, tok.AccessToken)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, Token{AccessToken: "tok-1"}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		tok, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok.AccessToken)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		_, err := store.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("clear removes the file and is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileTokenStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	require.NoError(t, store.Watch(ctx, func() { changed <- struct{}{} }))

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0o600))
	require.NoError(t, store.Save(context.Background(), Token{AccessToken: "new"}))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestRedisTokenStore_ConnectFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisTokenStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestRedisTokenStore_DefaultKey(t *testing.T) {
	store := NewRedisTokenStoreWithClient(nil, "")
	assert.Equal(t, "erpclient:access_token", store.Key())
	assert.Same(t, store, store.WithTTL(time.Minute))
}

func TestInspect(t *testing.T) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:   "u-1",
		Username: "alice",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := Inspect(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.Expired(now))
	assert.True(t, got.Expired(now.Add(2*time.Hour)))
	assert.InDelta(t, time.Hour.Seconds(), got.ExpiresIn(now).Seconds(), 1)

	_, err = Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Equal(t, time.Duration(0), (&Claims{}).ExpiresIn(now))
}

func TestIssuer(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, expiresAt, err := issuer.Issue(IssueInput{UserID: "1", Username: "admin", RoleIDs: []string{"admin"}})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 2*time.Second)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("viewer"))

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Minute).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewIssuer("test-secret", time.Minute)
		late.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err := late.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("missing user", func(t *testing.T) {
		anon, _, err := issuer.Issue(IssueInput{Username: "ghost"})
		require.NoError(t, err)
		_, err = issuer.Validate(anon)
		assert.ErrorIs(t, err, ErrMissingUser)
	})
}
