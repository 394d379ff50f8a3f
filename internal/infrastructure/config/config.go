package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Token store kinds
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config holds all client configuration
type Config struct {
	App     AppConfig
	API     APIConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
	Mock    MockConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig describes the remote ERP API
type APIConfig struct {
	BaseURL   string
	UserAgent string
}

// AuthConfig selects where the access token is persisted
type AuthConfig struct {
	TokenStore string // file, redis, memory
	TokenFile  string
	RedisKey   string
	Watch      bool // reload the token when the store changes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// MockConfig holds settings for the local mock ERP API
type MockConfig struct {
	Port              string
	JWTSecret         string
	TokenExpiration   time.Duration
	SeedCount         int
	RateLimitRequests float64 // requests per second, 0 disables
	RateLimitBurst    int
}

// Addr returns the redis address in host:port form
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load loads configuration from a .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ERPCLIENT_ prefix (e.g., ERPCLIENT_API_BASE_URL)
// 2. config.toml (or the file given by path)
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.erpclient")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ERPCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:   v.GetString("api.base_url"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Auth: AuthConfig{
			TokenStore: v.GetString("auth.token_store"),
			TokenFile:  v.GetString("auth.token_file"),
			RedisKey:   v.GetString("auth.redis_key"),
			Watch:      v.GetBool("auth.watch"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Addr:    v.GetString("metrics.addr"),
		},
		Mock: MockConfig{
			Port:              v.GetString("mock.port"),
			JWTSecret:         v.GetString("mock.jwt_secret"),
			TokenExpiration:   v.GetDuration("mock.token_expiration"),
			SeedCount:         v.GetInt("mock.seed_count"),
			RateLimitRequests: v.GetFloat64("mock.rate_limit_requests"),
			RateLimitBurst:    v.GetInt("mock.rate_limit_burst"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-client"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "ERP-Client/1.0"
	}
	if cfg.Auth.TokenStore == "" {
		cfg.Auth.TokenStore = TokenStoreFile
	}
	if cfg.Auth.TokenFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Auth.TokenFile = home + "/.erpclient/token.json"
		} else {
			cfg.Auth.TokenFile = ".erpclient-token.json"
		}
	}
	if cfg.Auth.RedisKey == "" {
		cfg.Auth.RedisKey = "erpclient:access_token"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Mock.Port == "" {
		cfg.Mock.Port = "8080"
	}
	if cfg.Mock.TokenExpiration == 0 {
		cfg.Mock.TokenExpiration = time.Hour
	}
	if cfg.Mock.SeedCount == 0 {
		cfg.Mock.SeedCount = 5
	}
	if cfg.Mock.RateLimitBurst == 0 {
		cfg.Mock.RateLimitBurst = 20
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
	}

	switch c.Auth.TokenStore {
	case TokenStoreFile, TokenStoreRedis, TokenStoreMemory:
	default:
		return fmt.Errorf("auth.token_store must be one of file, redis, memory; got %q", c.Auth.TokenStore)
	}

	if c.Mock.RateLimitRequests < 0 {
		return fmt.Errorf("mock.rate_limit_requests cannot be negative")
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
	}

	return nil
}
