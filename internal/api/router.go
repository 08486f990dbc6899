package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/stockpulse/internal/middleware"
)

// Router defaults.
const (
	DefaultRateLimitRPS   = 5
	DefaultRateLimitBurst = 10
	DefaultRequestTimeout = 30 * time.Second
)

// RouterOptions tunes the global middlewares.
type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// RequestTimeout bounds the request context, upstream calls included.
	RequestTimeout time.Duration
}

// NewRouter creates a Gin engine with the middleware chain, swagger docs and
// the /api/v1 routes. Zero options fall back to the package defaults.
//
// Health and readiness endpoints are registered by app.InitializeApp.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = DefaultRateLimitRPS
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = DefaultRateLimitBurst
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		withTimeout(opts.RequestTimeout),
	)

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/quote", handler.GetQuote)
		v1.GET("/report", handler.GetReport)
		v1.GET("/report/export", handler.ExportReport)
	}

	return router
}

func withTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
