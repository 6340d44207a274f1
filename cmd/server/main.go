package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/cache"
	"github.com/orderhub/backend/internal/infrastructure/config"
	"github.com/orderhub/backend/internal/infrastructure/ecommerce"
	"github.com/orderhub/backend/internal/infrastructure/logger"
	"github.com/orderhub/backend/internal/infrastructure/messaging"
	"github.com/orderhub/backend/internal/infrastructure/migration"
	"github.com/orderhub/backend/internal/infrastructure/persistence"
	"github.com/orderhub/backend/internal/infrastructure/scheduler"
	"github.com/orderhub/backend/internal/infrastructure/storage"
	"github.com/orderhub/backend/internal/infrastructure/telemetry"
	"github.com/orderhub/backend/internal/interfaces/http/handler"
	"github.com/orderhub/backend/internal/interfaces/http/router"
)

//	@title			OrderHub API
//	@version		1.0
//	@description	Order ingestion from WooCommerce, Shopify, PrestaShop, OpenCart and Magento webhooks,
//	@description	with an operator API for status changes pushed back to the stores.

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator access token. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OTLP log export tees every zap entry into the collector
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting order hub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TraceConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   serviceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(cfg.App.IsProduction()),
	)

	db, err := persistence.OpenDatabase(ctx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.App.IsProduction(),
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := tracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	sqlDB := db.SQL()

	var dbMetrics *telemetry.DBMetrics
	var integrationMetrics *telemetry.IntegrationMetrics
	if meterProvider.IsEnabled() {
		if dbMetrics, err = telemetry.NewDBMetrics(meterProvider.Meter("database"), sqlDB, log); err != nil {
			log.Warn("Database metrics unavailable", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics)); err != nil {
			log.Warn("Database metrics plugin failed", zap.Error(err))
		}
		if integrationMetrics, err = telemetry.NewIntegrationMetrics(meterProvider.Meter("integration")); err != nil {
			log.Warn("Integration metrics unavailable", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(sqlDB, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Platform secrets are sealed at rest when a key is configured
	var sealer persistence.SecretSealer
	if cfg.Integration.CredentialsKey != "" {
		s, err := auth.NewSecretboxSealer(cfg.Integration.CredentialsKey)
		if err != nil {
			log.Fatal("Invalid credentials key", zap.Error(err))
		}
		sealer = s
	} else {
		log.Warn("No credentials key configured, platform secrets are stored in plain text")
	}

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	credentialsRepo := persistence.NewGormCredentialsRepository(db.DB, sealer)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	idempotency, err := cache.OpenIdempotencyStore(ctx, cfg.Redis, cache.StoreOptions{
		Logger:       log,
		RequireRedis: cfg.App.IsProduction(),
	})
	if err != nil {
		log.Fatal("Failed to create delivery store", zap.Error(err))
	}

	archive := newPayloadArchive(ctx, cfg, log)
	publisher := newEventPublisher(cfg, log)

	registry, err := ecommerce.NewRegistry(ecommerce.ClientConfig{
		Timeout:           cfg.Integration.ClientTimeout,
		MaxResponseSize:   cfg.Integration.MaxResponseSize,
		UserAgent:         cfg.Integration.UserAgent,
		ShopifyAPIVersion: cfg.Integration.ShopifyAPIVersion,
	})
	if err != nil {
		log.Fatal("Failed to build platform registry", zap.Error(err))
	}

	// Initialize application services
	ingestion := integrationapp.NewOrderIngestionService(integrationapp.OrderIngestionServiceConfig{
		Orders:  orderRepo,
		Metrics: integrationMetrics,
		Logger:  log,
	})
	webhookService := integrationapp.NewWebhookService(integrationapp.WebhookServiceConfig{
		Platforms:        registry,
		Credentials:      credentialsRepo,
		Ingestion:        ingestion,
		Idempotency:      idempotency,
		Archive:          archive,
		Publisher:        publisher,
		SyncLogs:         syncLogRepo,
		Metrics:          integrationMetrics,
		Logger:           log,
		RequireSignature: cfg.Webhook.RequireSignature,
		DedupeEnabled:    cfg.Webhook.DedupeEnabled,
		IdempotencyTTL:   cfg.Webhook.IdempotencyTTL,
	})
	pusher := integrationapp.NewStatusPushService(integrationapp.StatusPushServiceConfig{
		Clients:     registry,
		Credentials: credentialsRepo,
		MapOutbound: ecommerce.MapOutbound,
		SyncLogs:    syncLogRepo,
		Publisher:   publisher,
		Metrics:     integrationMetrics,
		Logger:      log,
	})
	orderService := integrationapp.NewOrderStatusService(integrationapp.OrderStatusServiceConfig{
		Orders:      orderRepo,
		Pusher:      pusher,
		SyncLogs:    syncLogRepo,
		Logger:      log,
		PushTimeout: cfg.Integration.PushTimeout,
	})
	credentialsService := integrationapp.NewCredentialsService(credentialsRepo, log)

	retention := scheduler.NewRetentionJob(scheduler.RetentionConfig{
		RetainFor: cfg.SyncLog.Retention,
		Interval:  cfg.SyncLog.PruneInterval,
	}, syncLogRepo, log)
	retention.Start(ctx)

	checks := []handler.ReadinessCheck{{Name: "database", Check: db.Ping}}
	if redisStore, ok := idempotency.(*cache.RedisIdempotencyStore); ok {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: redisStore.Ping})
	}

	engine, err := router.NewEngine(ctx, router.EngineConfig{
		Handlers: router.Handlers{
			Webhook:     handler.NewWebhookHandler(webhookService, cfg.HTTP.MaxWebhookBodySize),
			Orders:      handler.NewOrderHandler(orderService),
			Credentials: handler.NewCredentialsHandler(credentialsService),
			System:      handler.NewSystemHandler(telemetry.ServiceVersion, checks...),
		},
		JWT:           auth.NewJWTService(cfg.JWT),
		HTTP:          cfg.HTTP,
		Logger:        log,
		ServiceName:   serviceName,
		Production:    cfg.App.IsProduction(),
		Tracing:       tracerProvider.IsEnabled(),
		MeterProvider: meterProvider,
		Profiling:     profiler.IsEnabled(),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Release in reverse order of construction
	closeAll(log,
		namedCloser{"sync log retention", func() error { return retention.Stop(shutdownCtx) }},
		namedCloser{"event publisher", publisher.Close},
		namedCloser{"delivery store", idempotency.Close},
		namedCloser{"database metrics", func() error { dbMetrics.Stop(); return nil }},
		namedCloser{"database", db.Close},
		namedCloser{"profiler", profiler.Stop},
		namedCloser{"meter provider", func() error { return meterProvider.Shutdown(shutdownCtx) }},
		namedCloser{"tracer provider", func() error { return tracerProvider.Shutdown(shutdownCtx) }},
		namedCloser{"log provider", func() error { return logProvider.Shutdown(shutdownCtx) }},
	)

	log.Info("Server exited gracefully")
}

// runMigrations applies the migrations embedded in the binary
func runMigrations(sqlDB *sql.DB, log *zap.Logger) error {
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// newPayloadArchive returns the S3 archive when storage is enabled. Archive
// failures are never fatal to ingestion, so a misconfigured bucket falls back
// to the no-op archive.
func newPayloadArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) integration.PayloadArchive {
	if !cfg.Storage.Enabled {
		return storage.NewNoopPayloadArchive()
	}
	archive, err := storage.NewS3PayloadArchive(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Error("Payload archive disabled", zap.Error(err))
		return storage.NewNoopPayloadArchive()
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Warn("Payload archive bucket check failed", zap.String("bucket", archive.GetBucket()), zap.Error(err))
	}
	return archive
}

type closablePublisher interface {
	shared.EventPublisher
	Close() error
}

type noopPublisher struct {
	shared.NoopEventPublisher
}

func (noopPublisher) Close() error { return nil }

func newEventPublisher(cfg *config.Config, log *zap.Logger) closablePublisher {
	if !cfg.Kafka.Enabled {
		return noopPublisher{}
	}
	publisher, err := messaging.NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("Order event publishing disabled", zap.Error(err))
		return noopPublisher{}
	}
	log.Info("Publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return publisher
}

type namedCloser struct {
	name  string
	close func() error
}

func closeAll(log *zap.Logger, closers ...namedCloser) {
	for _, c := range closers {
		if err := c.close(); err != nil {
			log.Error("Error closing "+c.name, zap.Error(err))
		}
	}
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
