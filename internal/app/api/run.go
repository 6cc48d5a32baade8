// Package api boots the laundry marketplace HTTP process: configuration,
// observability, repositories, domain services, and route registration.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	fcmclient "github.com/societyos/laundry-api/internal/clients/http/fcm"
	cataloghttp "github.com/societyos/laundry-api/internal/domains/catalog/adapters/http"
	catalogmemory "github.com/societyos/laundry-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/societyos/laundry-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/societyos/laundry-api/internal/domains/catalog/application"
	catalogports "github.com/societyos/laundry-api/internal/domains/catalog/ports"
	identityhttp "github.com/societyos/laundry-api/internal/domains/identity/adapters/http"
	identitymemory "github.com/societyos/laundry-api/internal/domains/identity/adapters/memory"
	identitypostgres "github.com/societyos/laundry-api/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/societyos/laundry-api/internal/domains/identity/application"
	identityports "github.com/societyos/laundry-api/internal/domains/identity/ports"
	notifhttp "github.com/societyos/laundry-api/internal/domains/notifications/adapters/http"
	notifpush "github.com/societyos/laundry-api/internal/domains/notifications/adapters/push"
	notifapp "github.com/societyos/laundry-api/internal/domains/notifications/application"
	notifports "github.com/societyos/laundry-api/internal/domains/notifications/ports"
	orderscache "github.com/societyos/laundry-api/internal/domains/orders/adapters/cache"
	ordersevents "github.com/societyos/laundry-api/internal/domains/orders/adapters/events"
	ordershttp "github.com/societyos/laundry-api/internal/domains/orders/adapters/http"
	ordersmemory "github.com/societyos/laundry-api/internal/domains/orders/adapters/memory"
	ordersnotify "github.com/societyos/laundry-api/internal/domains/orders/adapters/notify"
	ordersobs "github.com/societyos/laundry-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/societyos/laundry-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/societyos/laundry-api/internal/domains/orders/application"
	ordersports "github.com/societyos/laundry-api/internal/domains/orders/ports"
	paymentshttp "github.com/societyos/laundry-api/internal/domains/payments/adapters/http"
	paymentsmemory "github.com/societyos/laundry-api/internal/domains/payments/adapters/memory"
	paymentspostgres "github.com/societyos/laundry-api/internal/domains/payments/adapters/persistence/postgres"
	paymentsapp "github.com/societyos/laundry-api/internal/domains/payments/application"
	paymentsports "github.com/societyos/laundry-api/internal/domains/payments/ports"
	"github.com/societyos/laundry-api/internal/platform/migrations"
	platformobservability "github.com/societyos/laundry-api/internal/platform/observability"
	platformpostgres "github.com/societyos/laundry-api/internal/platform/postgres"
)

// Run boots the laundry HTTP API with observability, repositories, and
// side-effect adapters wired.
func Run(ctx context.Context) error {
	const serviceName = "laundry-api"

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectDatabase(ctx, cfg, logger)
	defer cleanupDB()

	catalogService := buildCatalogService(db, cfg, logger)
	identityService := buildIdentityService(db)
	notificationService := notifapp.NewService(identityService, buildPusher(cfg, logger), notifapp.WithLogger(logger))

	orderRepo := buildOrderRepository(db, cfg, logger)

	ordersOpts := []ordersapp.Option{ordersapp.WithLogger(logger)}
	if publisher, err := buildEventPublisher(cfg, logger); err == nil && publisher != nil {
		defer publisher.Close()
		ordersOpts = append(ordersOpts, ordersapp.WithEventPublisher(publisher))
	}

	var notifier ordersports.Notifier = ordersnotify.NewInlineNotifier(notificationService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, dispatching notifications inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		notifier = ordersnotify.NewTemporalNotifier(temporalClient)
		logger.Info("Temporal notification dispatch enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	ordersOpts = append(ordersOpts, ordersapp.WithNotifier(notifier))

	orderService := ordersobs.New(
		ordersapp.NewService(orderRepo, catalogService, ordersOpts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	paymentRepo := buildPaymentRepository(db)
	paymentService := paymentsapp.NewService(paymentRepo, orderService, paymentsapp.WithLogger(logger))

	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), otelgin.Middleware(serviceName))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	ordershttp.NewHandler(orderService).Register(v1)
	cataloghttp.NewHandler(catalogService).Register(v1)
	identityhttp.NewHandler(identityService).Register(v1)
	paymentshttp.NewHandler(paymentService).Register(v1)
	notifhttp.NewHandler(notificationService).Register(v1)

	addr := ":" + cfg.Port
	logger.Info("laundry API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("laundry API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to apply schema, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("repositories configured with postgres")
	return db, func() { _ = sqlDB.Close() }
}

func buildOrderRepository(db *gorm.DB, cfg Config, logger *slog.Logger) ordersports.Repository {
	var repo ordersports.Repository
	if db != nil {
		repo = orderspostgres.NewRepository(db)
	} else {
		repo = ordersmemory.NewRepository()
	}
	if cfg.RedisAddr == "" {
		return repo
	}
	cache := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Info("order read cache enabled", slog.String("addr", cfg.RedisAddr))
	return orderscache.NewRepository(repo, cache, orderscache.WithLogger(logger))
}

func buildCatalogService(db *gorm.DB, cfg Config, logger *slog.Logger) catalogports.Service {
	var repo catalogports.Repository
	if db != nil {
		repo = catalogpostgres.NewRepository(db)
	} else {
		repo = catalogmemory.NewRepository()
	}
	opts := []catalogapp.Option{}
	if !cfg.PriceTolerance.IsZero() {
		logger.Info("rate card price tolerance configured", slog.String("percent", cfg.PriceTolerance.String()))
		opts = append(opts, catalogapp.WithPriceTolerance(cfg.PriceTolerance))
	}
	return catalogapp.NewService(repo, opts...)
}

func buildIdentityService(db *gorm.DB) identityports.Service {
	if db != nil {
		return identityapp.NewService(identitypostgres.NewRepository(db))
	}
	return identityapp.NewService(identitymemory.NewRepository())
}

func buildPaymentRepository(db *gorm.DB) paymentsports.Repository {
	if db != nil {
		return paymentspostgres.NewRepository(db)
	}
	return paymentsmemory.NewRepository()
}

func buildPusher(cfg Config, logger *slog.Logger) notifports.Pusher {
	if cfg.FCMServerKey == "" {
		logger.Warn("FCM_SERVER_KEY not set, push delivery disabled")
		return unconfiguredPusher{}
	}
	fcm, err := fcmclient.NewClient(cfg.FCMServerKey, cfg.FCMEndpoint, nil)
	if err != nil {
		logger.Warn("failed to configure FCM client, push delivery disabled", slog.String("error", err.Error()))
		return unconfiguredPusher{}
	}
	return notifpush.NewFCM(fcm)
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (*ordersevents.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, order events disabled")
		return nil, nil
	}
	publisher, err := ordersevents.NewPublisher(cfg.AMQPURL)
	if err != nil {
		logger.Warn("failed to connect to AMQP broker, order events disabled", slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("order event publishing enabled")
	return publisher, nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// unconfiguredPusher stands in when no FCM credentials are present so the
// forwarder endpoint fails loudly instead of panicking.
type unconfiguredPusher struct{}

func (unconfiguredPusher) Push(context.Context, string, string, string, map[string]string) (map[string]any, error) {
	return nil, errors.New("FCM push delivery is not configured")
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
