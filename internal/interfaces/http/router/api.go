package router

import (
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/internal/interfaces/http/handler"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Config carries the HTTP knobs of the engine
type Config struct {
	ServiceName    string
	TracingEnabled bool
	MaxBodyBytes   int64
	Idempotency    shared.IdempotencyConfig
}

// Dependencies are the collaborators the engine wires together.
// Meter and Limiter may be nil.
type Dependencies struct {
	Logger      *zap.Logger
	Meter       metric.Meter
	Tokens      middleware.TokenValidator
	Limiter     *middleware.RateLimiter
	Idempotency shared.IdempotencyStore
	Consistency *handler.ConsistencyHandler
	Returns     *handler.ReturnHandler
	Health      *handler.HealthHandler
}

const defaultMaxBodyBytes = 1 << 20

// NewEngine builds the gin engine with the full middleware chain and every route
func NewEngine(cfg Config, deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.HTTPMetrics(deps.Meter, log),
	)

	engine.GET("/health", deps.Health.Health)

	api := []gin.HandlerFunc{middleware.JWTAuth(deps.Tokens, log), middleware.SpanEnricher()}
	if deps.Limiter != nil {
		api = append(api, middleware.RateLimit(deps.Limiter))
	}
	r := NewRouter(engine, WithGroupMiddleware(api...))

	reads := NewDomainGroup("consistency-reads", "/consistency").
		Use(middleware.RequireAnyRole(auth.ReadRoles...)).
		GET("", deps.Consistency.Detect).
		GET("/overview", deps.Consistency.Overview).
		GET("/export/caixa", deps.Consistency.ExportCash)

	corrections := NewDomainGroup("consistency-corrections", "/consistency").
		Use(middleware.RequireAnyRole(auth.CorrectionRoles...)).
		POST("", middleware.Idempotency(deps.Idempotency, cfg.Idempotency, log), deps.Consistency.Correct)

	orderReturns := NewDomainGroup("returns", "/sales-orders/:id/returns").
		Use(middleware.RequireAnyRole(auth.ReturnRoles...)).
		POST("", deps.Returns.Create).
		GET("", deps.Returns.List)

	r.Register(reads).Register(corrections).Register(orderReturns)
	r.Setup()
	return engine
}
