package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/erp/depreciation/internal/infrastructure/auth"
	"github.com/erp/depreciation/internal/infrastructure/config"
	"github.com/erp/depreciation/internal/infrastructure/event"
	"github.com/erp/depreciation/internal/infrastructure/lock"
	"github.com/erp/depreciation/internal/infrastructure/logger"
	"github.com/erp/depreciation/internal/infrastructure/migration"
	"github.com/erp/depreciation/internal/infrastructure/persistence"
	"github.com/erp/depreciation/internal/infrastructure/scheduler"
	"github.com/erp/depreciation/internal/infrastructure/telemetry"
	"github.com/erp/depreciation/internal/interfaces/http/handler"
	"github.com/erp/depreciation/internal/interfaces/http/middleware"
	"github.com/erp/depreciation/internal/interfaces/http/router"
	"github.com/erp/depreciation/migrations"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//	@title			Depreciation Engine API
//	@version		1.0
//	@description	Fixed asset depreciation: schedules, batch runs, execution history and projections

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting depreciation engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPass,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

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

	lockStore, err := lock.NewFactory(cfg.Redis,
		lock.WithLogger(log),
		lock.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(cfg.Depreciation.LockBackend)
	if err != nil {
		log.Fatal("Failed to create execution lock", zap.Error(err))
	}

	// Repositories
	assetRepo := persistence.NewGormDepreciationAssetRepository(db.DB)
	scheduleRepo := persistence.NewGormDepreciationScheduleRepository(db.DB)
	executionRepo := persistence.NewGormDepreciationExecutionRepository(db.DB)
	postingRepo := persistence.NewGormDepreciationPostingRepository(db.DB)
	usageRepo := persistence.NewGormAssetUsageRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	runMetrics, err := telemetry.NewRunMetrics(meterProvider.Meter("depreciation"), log)
	if err != nil {
		log.Fatal("Failed to create run metrics", zap.Error(err))
	}
	bus.Subscribe(runMetrics)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	executor := depreciationapp.NewBatchExecutor(
		assetRepo, scheduleRepo, executionRepo, postingRepo, usageRepo,
		lockStore, bus,
		depreciationapp.ExecutorConfig{
			Workers:           cfg.Depreciation.Workers,
			MaxRunDuration:    cfg.Depreciation.MaxRunDuration,
			LockTTL:           cfg.Depreciation.LockTTL,
			MaxCatchUpPeriods: cfg.Depreciation.MaxCatchUpPeriods,
		},
		log,
	)
	scheduleService := depreciationapp.NewScheduleService(scheduleRepo, bus, log)
	historyService := depreciationapp.NewHistoryService(executionRepo)
	dueWorkService := depreciationapp.NewDueWorkService(assetRepo)
	projectionService := depreciationapp.NewProjectionService(assetRepo, postingRepo, usageRepo)
	usageService := depreciationapp.NewUsageService(assetRepo, usageRepo)

	// Time-based trigger
	location, err := cfg.Depreciation.Location()
	if err != nil {
		log.Fatal("Invalid depreciation timezone", zap.Error(err))
	}
	cronScheduler, err := scheduler.New(scheduler.Config{
		Enabled:  cfg.Depreciation.SchedulerEnabled,
		CronSpec: cfg.Depreciation.CronSpec,
		Location: location,
	}, scheduler.NewDueScheduleTrigger(scheduleRepo, executor, log), log)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := cronScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	middleware.SetupValidator()

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	systemHandler := handler.NewSystemHandler(telemetry.ServiceVersion, map[string]handler.HealthChecker{"database": db}).
		WithScheduler(cronScheduler)
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:        log,
		Authenticator: auth.NewJWTService(cfg.JWT),
		Meter:         meterProvider.Meter("http"),
		RateLimiter:   rateLimiter,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		CORS:           corsConfig,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		System:         systemHandler,
		Handlers: router.Handlers{
			Schedules:  handler.NewScheduleHandler(scheduleService, executor),
			Executions: handler.NewExecutionHandler(historyService),
			Assets:     handler.NewAssetHandler(dueWorkService, projectionService, usageService),
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting work first, then let running batches finish before the
	// stores they write to go away
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := cronScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping scheduler", zap.Error(err))
	}
	if err := executor.Wait(shutdownCtx); err != nil {
		log.Warn("Depreciation runs still in progress at shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := lockStore.Close(); err != nil {
		log.Error("Error closing execution lock", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// runMigrations applies the embedded migrations on a dedicated connection;
// closing the migrator closes that connection
func runMigrations(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}

	m, err := migration.NewEmbedded(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()

	return m.Up()
}
