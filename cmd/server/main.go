// Command server runs the consistency HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/application/reporting"
	"github.com/erp/consistency/internal/application/returns"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/erp/consistency/internal/infrastructure/cache"
	"github.com/erp/consistency/internal/infrastructure/config"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/internal/infrastructure/persistence"
	"github.com/erp/consistency/internal/infrastructure/telemetry"
	"github.com/erp/consistency/internal/interfaces/http/handler"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/erp/consistency/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("starting consistency service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meters.Meter("consistency")

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	if meters.IsEnabled() {
		pool, err := telemetry.NewPoolMetrics(meter, sqlDB, cfg.Telemetry.MetricsInterval, log)
		if err != nil {
			log.Warn("pool metrics disabled", zap.Error(err))
		} else {
			pool.Start(ctx)
			defer pool.Stop()
		}
	}
	log.Info("database connected")

	metrics, err := telemetry.NewConsistencyMetrics(meter)
	if err != nil {
		log.Warn("consistency metrics disabled", zap.Error(err))
	}

	store, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.Idempotency, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	repos := persistence.NewGormRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	detect := consistency.NewDetectionService(repos, log, metrics)
	correct := consistency.NewCorrectionService(scope, repos, log, metrics, cfg.Consistency.DefaultDueDays)
	if rs, ok := store.(*cache.RedisIdempotencyStore); ok {
		correct.WithLocker(cache.NewRedisLocker(rs.Client(), ""))
	} else {
		log.Warn("no Redis lock, concurrent corrections are guarded by transactions only")
	}
	returnService := returns.NewService(scope, repos, log, metrics)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	engine := router.NewEngine(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracer.IsEnabled(),
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		Idempotency:    shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL},
	}, router.Dependencies{
		Logger:      log,
		Meter:       meter,
		Tokens:      auth.NewJWTService(cfg.JWT),
		Limiter:     limiter,
		Idempotency: store,
		Consistency: handler.NewConsistencyHandler(reporting.NewFacade(detect, log), correct),
		Returns:     handler.NewReturnHandler(returnService),
		Health:      handler.NewHealthHandler(sqlDB),
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Warn("meter shutdown failed", zap.Error(err))
	}
	log.Info("server exited gracefully")
}
