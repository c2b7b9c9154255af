package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/tablekit/backoffice/internal/application/inventory"
	orderapp "github.com/tablekit/backoffice/internal/application/order"
	tableapp "github.com/tablekit/backoffice/internal/application/table"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/auth"
	"github.com/tablekit/backoffice/internal/infrastructure/cache"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
	"github.com/tablekit/backoffice/internal/infrastructure/event"
	"github.com/tablekit/backoffice/internal/infrastructure/logger"
	"github.com/tablekit/backoffice/internal/infrastructure/messaging"
	"github.com/tablekit/backoffice/internal/infrastructure/persistence"
	"github.com/tablekit/backoffice/internal/infrastructure/scheduler"
	"github.com/tablekit/backoffice/internal/infrastructure/telemetry"
	"github.com/tablekit/backoffice/internal/interfaces/http/handler"
	"github.com/tablekit/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting restaurant back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{Logger: gormLog})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	numbers, err := cache.NewOrderNumberGeneratorFactory(cfg.Order, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to create order number sequence", zap.Error(err))
	}
	if closer, ok := numbers.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Error closing order number sequence", zap.Error(err))
			}
		}()
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	orderService := orderapp.NewService(scope, persistence.NewGormOrderRepository(db.DB), numbers, log)
	tableService := tableapp.NewService(scope, persistence.NewGormTableRepository(db.DB), log)
	inventoryService := inventoryapp.NewService(scope,
		persistence.NewGormInventoryItemRepository(db.DB),
		persistence.NewGormInventoryTransactionRepository(db.DB),
		log,
	)
	orderService.SetMetrics(metrics)
	inventoryService.SetMetrics(metrics)

	var eventBus shared.EventBus = event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	var broker *messaging.Client
	if cfg.Messaging.Enabled {
		broker, err = messaging.Dial(cfg.Messaging.URL)
		if err != nil {
			log.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer func() {
			if err := broker.Close(); err != nil {
				log.Error("Error closing message broker", zap.Error(err))
			}
		}()
		if err := broker.DeclareTopicExchange(cfg.Messaging.Exchange); err != nil {
			log.Fatal("Failed to declare kitchen exchange", zap.Error(err))
		}
		relay := messaging.NewKitchenRelay(broker, cfg.Messaging.Exchange, log)
		eventBus.Subscribe(relay)
		log.Info("Kitchen relay enabled",
			zap.String("exchange", cfg.Messaging.Exchange),
			zap.Strings("event_types", relay.EventTypes()),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	orderService.SetEventPublisher(eventBus)
	tableService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)

	if cfg.Audit.Enabled {
		stopAudit := startLedgerAudit(ctx, cfg, inventoryService, metrics, log)
		defer stopAudit()
	}

	health := handler.NewHealthHandler(version).
		AddCheck("database", func(context.Context) error { return db.Ping() })
	if p, ok := numbers.(pinger); ok {
		health.AddCheck("redis", p.Ping)
	}
	if broker != nil {
		health.AddCheck("rabbitmq", func(context.Context) error { return broker.Ping() })
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		JWT:            auth.NewJWTService(cfg.JWT),
		Logger:         log,
	}, router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, cfg.Order.Location()),
		Tables:    handler.NewTableHandler(tableService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Health:    health,
	})

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

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// startLedgerAudit launches the nightly inventory ledger check and returns its shutdown func
func startLedgerAudit(
	ctx context.Context,
	cfg *config.Config,
	inventoryService *inventoryapp.Service,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) func() {
	hour, minute, err := scheduler.ParseDailySchedule(cfg.Audit.Schedule)
	if err != nil {
		log.Fatal("Invalid audit schedule", zap.Error(err))
	}

	executor := scheduler.NewLedgerAuditExecutor(inventoryService, log)
	executor.SetMetrics(metrics)
	pool := scheduler.NewScheduler(scheduler.Config{
		Workers:    cfg.Audit.Workers,
		JobTimeout: cfg.Audit.JobTimeout,
		RetryDelay: cfg.Audit.RetryDelay,
	}, executor, log)
	trigger := scheduler.NewLedgerAuditTrigger(scheduler.LedgerAuditTriggerConfig{
		Hour:       hour,
		Minute:     minute,
		Location:   cfg.Order.Location(),
		MaxRetries: cfg.Audit.RetryAttempts,
	}, pool, inventoryService, executor, log)

	if err := pool.Start(ctx); err != nil {
		log.Fatal("Failed to start audit workers", zap.Error(err))
	}
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start audit trigger", zap.Error(err))
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Error("Error stopping audit trigger", zap.Error(err))
		}
		if err := pool.Stop(stopCtx); err != nil {
			log.Error("Error stopping audit workers", zap.Error(err))
		}
		stats := executor.Stats()
		log.Info("Ledger audit stopped",
			zap.Int("checked", stats.Checked),
			zap.Int("drifted", stats.Drifted),
			zap.Int("failed", stats.Failed),
		)
	}
}
