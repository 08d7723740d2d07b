package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	billingapp "github.com/handwerk/backoffice/internal/application/billing"
	projectapp "github.com/handwerk/backoffice/internal/application/project"
	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/auth"
	"github.com/handwerk/backoffice/internal/infrastructure/cache"
	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/handwerk/backoffice/internal/infrastructure/event"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence"
	"github.com/handwerk/backoffice/internal/infrastructure/telemetry"
	"github.com/handwerk/backoffice/internal/interfaces/http/handler"
	"github.com/handwerk/backoffice/internal/interfaces/http/middleware"
	"github.com/handwerk/backoffice/internal/interfaces/http/router"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	telemetry.ServiceVersion = version
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(telemetry.TracerName)

	// Database with the zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	timeEntryRepo := persistence.NewGormTimeEntryRepository(db.DB)
	materialRepo := persistence.NewGormMaterialUsageRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	var settingsRepo billing.SettingsRepository = persistence.NewGormSettingsRepository(db.DB)

	// Invoice numbering and the Redis backed extras
	sequence, redisClient, err := cache.NewInvoiceSequenceFactory(cfg.Invoicing, cfg.Redis,
		persistence.NewDBInvoiceSequence(db.DB), cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create invoice sequence", zap.Error(err))
	}
	if redisClient == nil {
		redisClient = connectRedis(cfg.Redis, log)
	}
	var revocations auth.RevocationList
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
		settingsRepo = cache.NewCachedSettingsRepository(settingsRepo, redisClient, cache.WithSettingsLogger(log))
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLogHandler(log))
	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}
	eventBus.Subscribe(invoiceMetrics)
	if nc := connectNATS(cfg.Event, cfg.App.Name, log); nc != nil {
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Warn("Error draining NATS connection", zap.Error(err))
			}
		}()
		eventBus.Subscribe(event.NewNATSForwarder(nc, event.NewEventSerializer(), cfg.Event.SubjectPrefix, log))
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	projectService := projectapp.NewProjectService(projectRepo)
	employeeService := projectapp.NewEmployeeService(employeeRepo)
	siteRecordService := projectapp.NewSiteRecordService(projectRepo, employeeRepo, timeEntryRepo, materialRepo, reportRepo)
	offerService := billingapp.NewOfferService(projectRepo, offerRepo)
	settingsService := billingapp.NewSettingsService(settingsRepo)
	invoicingService := billingapp.NewInvoicingService(billingapp.Repositories{
		Projects:    projectRepo,
		Employees:   employeeRepo,
		TimeEntries: timeEntryRepo,
		Materials:   materialRepo,
		Reports:     reportRepo,
		Offers:      offerRepo,
		Invoices:    invoiceRepo,
		Settings:    settingsRepo,
	}, sequence, persistence.NewGormTransactionScope(db.DB))
	invoicingService.SetEventPublisher(eventBus)
	invoicingService.SetNumberRetries(cfg.Invoicing.NumberRetries)

	// HTTP engine
	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Global middleware; request id first so every log line carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(version, db)
	engine.GET("/health", systemHandler.Health)

	verifier := auth.NewTokenVerifier(cfg.JWT, revocations)
	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			Verifier: verifier,
			Logger:   log,
		})).
		Use(middleware.TracingAttributeInjector())

	router.RegisterAPI(r, router.Handlers{
		Projects:   handler.NewProjectHandler(projectService, employeeService),
		Records:    handler.NewSiteRecordHandler(siteRecordService),
		Offers:     handler.NewOfferHandler(offerService),
		Generation: handler.NewInvoiceGenerationHandler(invoicingService),
		Invoices:   handler.NewInvoiceHandler(invoicingService, settingsService),
	}).Setup()

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// connectRedis returns nil when Redis is not reachable; the settings cache and
// token revocation are then disabled
func connectRedis(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, settings cache and token revocation disabled", zap.Error(err))
		return nil
	}
	log.Info("Redis connected", zap.String("addr", cfg.Addr()))
	return client
}

// connectNATS returns nil when event forwarding is disabled or the server is unreachable
func connectNATS(cfg config.EventConfig, name string, log *zap.Logger) *nats.Conn {
	if !cfg.NATSEnabled {
		return nil
	}
	nc, err := event.Connect(cfg, name, log)
	if err != nil {
		log.Warn("NATS unavailable, events stay in process", zap.Error(err))
		return nil
	}
	log.Info("Forwarding domain events to NATS",
		zap.String("url", nc.ConnectedUrl()),
		zap.String("subject_prefix", cfg.SubjectPrefix))
	return nc
}
