package router

import (
	"github.com/erp/depreciation/internal/infrastructure/logger"
	"github.com/erp/depreciation/internal/interfaces/http/handler"
	"github.com/erp/depreciation/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries everything the HTTP engine is built from
type EngineConfig struct {
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	// Meter records HTTP metrics; nil disables them
	Meter metric.Meter
	// RateLimiter is optional
	RateLimiter    *middleware.RateLimiter
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string

	System   *handler.SystemHandler
	Handlers Handlers
}

// NewEngine builds the gin engine with the full middleware chain and every
// route registered
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	// Order matters: the request id feeds the logger, tracing precedes the
	// attribute injector, and authentication precedes rate limiting
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		httpMetrics,
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
	}

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Authenticator: cfg.Authenticator,
			SkipPaths:     []string{APIPrefix + "/health"},
			Logger:        log,
		}),
		middleware.TracingAttributeInjector(),
	}
	if cfg.RateLimiter != nil {
		authenticated = append(authenticated, middleware.RateLimit(cfg.RateLimiter))
	}

	api := NewDomainGroup("")
	if cfg.System != nil {
		api.GET("/health", cfg.System.Health)
	}
	secured := api.Group("").Use(authenticated...)
	if cfg.System != nil {
		secured.GET("/system/info", cfg.System.GetSystemInfo)
	}

	r := NewRouter(engine)
	r.Register(api)
	r.Register(NewDepreciationRoutes(cfg.Handlers, log).Use(authenticated...))
	r.Setup()

	return engine, nil
}
