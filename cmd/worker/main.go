package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	fcmclient "github.com/societyos/laundry-api/internal/clients/http/fcm"
	identitymemory "github.com/societyos/laundry-api/internal/domains/identity/adapters/memory"
	identitypostgres "github.com/societyos/laundry-api/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/societyos/laundry-api/internal/domains/identity/application"
	identityports "github.com/societyos/laundry-api/internal/domains/identity/ports"
	notifpush "github.com/societyos/laundry-api/internal/domains/notifications/adapters/push"
	notifapp "github.com/societyos/laundry-api/internal/domains/notifications/application"
	notifworkflows "github.com/societyos/laundry-api/internal/durable/temporal/workflows/notifications"
	platformobservability "github.com/societyos/laundry-api/internal/platform/observability"
	platformpostgres "github.com/societyos/laundry-api/internal/platform/postgres"
	notifactivities "github.com/societyos/laundry-api/internal/platform/temporal/activities/notifications"
)

func main() {
	ctx := context.Background()
	const serviceName = "laundry-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	identityService, cleanupRepo := buildIdentityService(ctx, logger)
	defer cleanupRepo()

	fcm, err := fcmclient.NewClient(os.Getenv("FCM_SERVER_KEY"), os.Getenv("FCM_ENDPOINT"), nil)
	if err != nil {
		logger.Error("failed to configure FCM client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	notificationService := notifapp.NewService(identityService, notifpush.NewFCM(fcm), notifapp.WithLogger(logger))
	activities := notifactivities.NewActivities(notificationService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notifworkflows.SendTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notifworkflows.SendWorkflow, workflow.RegisterOptions{Name: notifworkflows.SendWorkflowName})
	w.RegisterActivityWithOptions(activities.Forward, activity.RegisterOptions{Name: notifworkflows.ForwardActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notifworkflows.SendTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildIdentityService(ctx context.Context, logger *slog.Logger) (identityports.Service, func()) {
	dsn := os.Getenv("POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory user repository")
		return identityapp.NewService(identitymemory.NewRepository()), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn, platformpostgres.WithLogger(logger))
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return identityapp.NewService(identitymemory.NewRepository()), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return identityapp.NewService(identitymemory.NewRepository()), func() {}
	}
	logger.Info("worker user repository configured with postgres")
	return identityapp.NewService(identitypostgres.NewRepository(db)), func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
