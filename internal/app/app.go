package app

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockpulse/config"
	"github.com/guttosm/stockpulse/internal/api"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the query stack (price source, share resolver, query service).
//   - Creates the HTTP handler and router with the configured rate limit.
//   - Registers health and readiness probes (readiness pings the warehouse when used).
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	stack, err := NewQueryStack(cfg)
	if err != nil {
		return nil, nil, err
	}

	handler := api.NewHandler(stack.Service, stack.DataSource)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	api.NewHealthHandler(stack.Ping).Register(router)

	return router, stack.Close, nil
}
