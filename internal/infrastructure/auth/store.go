package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenStore persists the access token between runs.
// Load returns an empty Token and no error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (Token, error)
	Save(ctx context.Context, tok Token) error
	Clear(ctx context.Context) error
}

// Watcher is implemented by stores that can report external changes
type Watcher interface {
	// Watch calls onChange whenever the stored token may have changed, until
	// ctx is done.
	Watch(ctx context.Context, onChange func()) error
}

// MemoryTokenStore keeps the token in process memory
type MemoryTokenStore struct {
	mu  sync.Mutex
	tok Token
}

// NewMemoryTokenStore creates a store holding tok
func NewMemoryTokenStore(tok Token) *MemoryTokenStore {
	return &MemoryTokenStore{tok: tok}
}

func (m *MemoryTokenStore) Load(context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, tok Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	return m.Save(context.Background(), Token{})
}

// FileTokenStore keeps the token as JSON in a file readable only by the owner
type FileTokenStore struct {
	path   string
	logger *zap.Logger
}

// NewFileTokenStore creates a store backed by path
func NewFileTokenStore(path string, logger *zap.Logger) *FileTokenStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileTokenStore{path: path, logger: logger}
}

// Path returns the token file location
func (f *FileTokenStore) Path() string {
	return f.path
}

func (f *FileTokenStore) Load(context.Context) (Token, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("reading token file: %w", err)
	}
	if len(raw) == 0 {
		return Token{}, nil
	}

	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return Token{}, fmt.Errorf("parsing token file %s: %w", f.path, err)
	}
	return tok, nil
}

func (f *FileTokenStore) Save(_ context.Context, tok Token) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("securing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileTokenStore) Clear(context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// Watch implements Watcher. The parent directory is watched so that atomic
// renames and re-creation of the file are seen.
func (f *FileTokenStore) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		name := filepath.Base(f.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					f.logger.Debug("token file changed", zap.String("op", event.Op.String()))
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("token watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// RedisTokenStore shares one token between processes through Redis
type RedisTokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisTokenStore connects to Redis and verifies the connection
func NewRedisTokenStore(ctx context.Context, cfg RedisConfig) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisTokenStoreWithClient(client, cfg.Key), nil
}

// NewRedisTokenStoreWithClient creates a store with an existing Redis client
func NewRedisTokenStoreWithClient(client *redis.Client, key string) *RedisTokenStore {
	if key == "" {
		key = "erpclient:access_token"
	}
	return &RedisTokenStore{client: client, key: key}
}

// Key returns the Redis key holding the token
func (r *RedisTokenStore) Key() string {
	return r.key
}

// WithTTL expires stored tokens after ttl; zero keeps them forever
func (r *RedisTokenStore) WithTTL(ttl time.Duration) *RedisTokenStore {
	r.ttl = ttl
	return r
}

func (r *RedisTokenStore) Load(ctx context.Context) (Token, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("reading token from redis: %w", err)
	}
	return Token{AccessToken: val}, nil
}

func (r *RedisTokenStore) Save(ctx context.Context, tok Token) error {
	if err := r.client.Set(ctx, r.key, tok.AccessToken, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing token to redis: %w", err)
	}
	return nil
}

func (r *RedisTokenStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("deleting token from redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (r *RedisTokenStore) Close() error {
	return r.client.Close()
}

var (
	_ TokenStore = (*MemoryTokenStore)(nil)
	_ TokenStore = (*FileTokenStore)(nil)
	_ TokenStore = (*RedisTokenStore)(nil)
	_ Watcher    = (*FileTokenStore)(nil)
)
