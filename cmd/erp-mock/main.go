package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/infrastructure/config"
	"github.com/erp/client/internal/infrastructure/logger"
	"github.com/erp/client/internal/interfaces/http/middleware"
	"github.com/erp/client/internal/interfaces/http/mockdb"
	"github.com/erp/client/internal/interfaces/http/router"
)

const defaultJWTSecret = "erp-mock-development-secret"

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ERPCLIENT_CONFIG"))
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := cfg.Mock.JWTSecret
	if secret == "" {
		log.Warn("mock.jwt_secret is not set, using the development secret")
		secret = defaultJWTSecret
	}

	db := mockdb.New()
	mockdb.Seed(db, mockdb.SeedOptions{Count: cfg.Mock.SeedCount})
	log.Info("Mock data seeded",
		zap.Int("budgets", db.Budgets.Len()),
		zap.Int("accounts", db.Accounts.Len()),
		zap.Int("users", db.Users.Len()),
		zap.Int("items", db.Items.Len()),
	)

	var limiter *middleware.RateLimiter
	if cfg.Mock.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(cfg.Mock.RateLimitRequests, cfg.Mock.RateLimitBurst)
	}

	engine := router.New(router.Config{
		DB:          db,
		Issuer:      auth.NewIssuer(secret, cfg.Mock.TokenExpiration),
		Logger:      log,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Mock.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Mock ERP API starting",
			zap.String("addr", srv.Addr),
			zap.Strings("logins", []string{"admin/admin", "viewer/viewer"}),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
