package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"tutorhub/internal/notifications/consumer"
	"tutorhub/internal/notifications/dispatcher"
	"tutorhub/internal/notifications/gateway"
	"tutorhub/internal/notifications/handler"
	"tutorhub/internal/notifications/repository"
	"tutorhub/internal/notifications/scheduler"
	"tutorhub/pkg/app"
	"tutorhub/pkg/config"
	"tutorhub/pkg/kafka"
	kafka_config "tutorhub/pkg/kafka/config"
	kafka_middleware "tutorhub/pkg/kafka/middleware"
)

const ServiceName = "notifications"

func main() {
	_ = godotenv.Load()
	cfg := config.Load(ServiceName)
	// The dispatch endpoint is auth-gated by the bearer middleware, which
	// is only installed when a secret is configured. Refuse to start open.
	if cfg.DispatchSecret == "" {
		cfg.Log.Fatal("DISPATCH_SECRET must be set for the notifications service")
	}
	if cfg.GatewayBaseURL == "" {
		cfg.Log.Fatal("GATEWAY_BASE_URL must be set for the notifications service")
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.LogConfiguration()
	cfg.Log.Info("Starting Notifications service")

	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	notificationScheduler := scheduler.NewScheduler(notificationRepo, cfg)
	emailGateway := gateway.NewHTTPGateway(cfg)
	notificationDispatcher := dispatcher.NewDispatcher(notificationRepo, emailGateway, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventConsumer := startEventConsumer(ctx, cfg, notificationScheduler)
	defer eventConsumer.Close()

	go runDispatchLoop(ctx, cfg, notificationDispatcher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewDispatchHandler(notificationDispatcher, cfg.Log))
	serverApp.Run()
}

func startEventConsumer(ctx context.Context, cfg *config.Config, notificationScheduler *scheduler.Scheduler) *kafka.Consumer {
	kafkaCfg := kafka_config.Load()
	eventHandler := consumer.NewBookingEventConsumer(notificationScheduler, cfg)

	kafkaConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingEventsTopic,
		kafkaCfg.ConsumerGroupID,
		kafkaCfg.BookingEventsDLQTopic,
		eventHandler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		kafkaConsumer.Use(kafka_middleware.LoggingConsumerMiddleware())
		kafkaConsumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	go func() {
		if err := kafkaConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
		}
	}()

	cfg.Log.Info("Booking events consumer started",
		"topic", kafkaCfg.BookingEventsTopic,
		"group_id", kafkaCfg.ConsumerGroupID,
	)
	return kafkaConsumer
}

// runDispatchLoop drives periodic delivery of due notifications. The
// manual dispatch endpoint shares the same Dispatcher, so an operator
// can trigger a run between ticks without duplicate sends.
func runDispatchLoop(ctx context.Context, cfg *config.Config, notificationDispatcher *dispatcher.Dispatcher) {
	ticker := time.NewTicker(cfg.DispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, cfg.DispatchInterval)
			if _, err := notificationDispatcher.Run(runCtx); err != nil {
				cfg.Log.Error("Scheduled dispatch run failed", "error", err)
			}
			cancel()
		}
	}
}
