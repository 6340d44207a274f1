package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/config"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
	"github.com/orderhub/backend/internal/interfaces/http/handler"
	"github.com/orderhub/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers the engine mounts
type Handlers struct {
	Webhook     *handler.WebhookHandler
	Orders      *handler.OrderHandler
	Credentials *handler.CredentialsHandler
	System      *handler.SystemHandler
}

// EngineConfig holds everything NewEngine needs
type EngineConfig struct {
	Handlers    Handlers
	JWT         *auth.JWTService
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
	ServiceName string
	Production  bool
	// Tracing turns on otelgin spans; MeterProvider may be nil
	Tracing       bool
	MeterProvider *telemetry.MeterProvider
	Profiling     bool
}

// NewEngine builds the gin engine with the full middleware chain. Rate limiter
// cleanup goroutines stop when ctx is cancelled.
//
//	/health, /ready                      probes
//	/webhooks/:platform                  POST, OPTIONS (signature-authenticated)
//	/api/v1/orders...                    operator API (JWT)
//	/api/v1/integrations/credentials...  admin API (JWT, admin role)
func NewEngine(ctx context.Context, cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{Enabled: cfg.Tracing, ServiceName: cfg.ServiceName}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.MeterProvider,
			Enabled:       cfg.MeterProvider != nil,
		}),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.Profiling,
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		middleware.SecureWithConfig(securityConfig(cfg.Production)),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	engine.GET("/health", cfg.Handlers.System.Health)
	engine.GET("/ready", cfg.Handlers.System.Ready)

	webhooks := engine.Group("/webhooks")
	if rl := cfg.HTTP.RateLimit; rl.Enabled {
		webhooks.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, rl.WebhookRequests, rl.Window)))
	}
	webhooks.POST("/:platform", cfg.Handlers.Webhook.Handle)
	webhooks.OPTIONS("/:platform", cfg.Handlers.Webhook.Handle)

	cors := middleware.CORSWithConfig(corsConfig(cfg.HTTP.CORSAllowOrigins))
	// preflights carry no token and must be answered before auth
	engine.OPTIONS(apiPrefix+"/*path", cors)

	apiMiddleware := []gin.HandlerFunc{
		cors,
		middleware.JWTAuthMiddleware(cfg.JWT),
		middleware.TracingAttributeInjector(),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	}
	if cfg.HTTP.MaxRequestBodySize > 0 {
		apiMiddleware = append(apiMiddleware, middleware.BodyLimit(cfg.HTTP.MaxRequestBodySize))
	}
	if rl := cfg.HTTP.RateLimit; rl.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(middleware.NewRateLimiter(ctx, rl.APIRequests, rl.Window)))
	}

	mountAPI(engine, apiPrefix, apiMiddleware,
		orderRoutes(cfg.Handlers.Orders),
		credentialRoutes(cfg.Handlers.Credentials),
	)

	return engine, nil
}

func orderRoutes(h *handler.OrderHandler) area {
	return area{prefix: "/orders", routes: []route{
		get("", h.List),
		get("/:id", h.Get),
		get("/code/:code", h.GetByCode),
		patch("/:id/status", h.ChangeStatus),
		patch("/:id/comment", h.SetComment),
		patch("/:id/assignment", h.Assign),
		patch("/:id/payment", h.RecordPayment),
		get("/:id/sync-logs", h.SyncLogs),
	}}
}

func credentialRoutes(h *handler.CredentialsHandler) area {
	return area{
		prefix:     "/integrations/credentials",
		middleware: []gin.HandlerFunc{middleware.RequireAdmin()},
		routes: []route{
			get("", h.List),
			put("/:platform", h.Save),
		},
	}
}

func corsConfig(origins []string) middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func securityConfig(production bool) middleware.SecurityConfig {
	cfg := middleware.DefaultSecurityConfig()
	if production {
		cfg.HSTSMaxAge = 365 * 24 * time.Hour
	}
	return cfg
}
