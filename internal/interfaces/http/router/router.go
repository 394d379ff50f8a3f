// Package router assembles the mock ERP API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/client/internal/infrastructure/auth"
	"github.com/erp/client/internal/interfaces/http/dto"
	"github.com/erp/client/internal/interfaces/http/handler"
	"github.com/erp/client/internal/interfaces/http/middleware"
	"github.com/erp/client/internal/interfaces/http/mockdb"
)

// Paths outside the bearer-token check
const (
	LoginPath  = "/erp/auth/login"
	MePath     = "/erp/auth/me"
	HealthPath = "/health"
)

// Config holds the router dependencies
type Config struct {
	DB     *mockdb.DB
	Issuer *auth.Issuer
	Logger *zap.Logger
	// RateLimiter is optional
	RateLimiter *middleware.RateLimiter
	// ServiceName names server spans; defaults to erp-mock
	ServiceName string
}

// New builds the gin engine serving every ERP resource
func New(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	service := cfg.ServiceName
	if service == "" {
		service = "erp-mock"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.Tracing(service), middleware.Logger(log))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found"))
	})

	engine.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
	})

	authHandler := handler.NewAuthHandler(cfg.DB, cfg.Issuer)
	engine.POST(LoginPath, authHandler.Login)

	// Endpoint sets carry absolute paths, so the group is rooted at "/"
	api := engine.Group("/", middleware.JWTAuth(middleware.JWTConfig{Issuer: cfg.Issuer, Logger: log}))
	api.GET(MePath, authHandler.Me)
	handler.RegisterFinance(api, cfg.DB)
	handler.RegisterIdentity(api, cfg.DB, middleware.RequireRole(mockdb.RoleAdmin))
	handler.RegisterInventory(api, cfg.DB)

	return engine
}
