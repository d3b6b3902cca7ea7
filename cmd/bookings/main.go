package main

import (
	"github.com/joho/godotenv"

	availabilityrepository "tutorhub/internal/availability/repository"
	availabilityservice "tutorhub/internal/availability/service"
	availabilityvalidator "tutorhub/internal/availability/validator"
	"tutorhub/internal/bookings/handler"
	"tutorhub/internal/bookings/repository"
	"tutorhub/internal/bookings/service"
	"tutorhub/internal/bookings/validator"
	"tutorhub/pkg/app"
	"tutorhub/pkg/config"
	"tutorhub/pkg/kafka"
	kafka_config "tutorhub/pkg/kafka/config"
	kafka_middleware "tutorhub/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	_ = godotenv.Load()
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.LogConfiguration()
	cfg.Log.Info("Starting Bookings service")

	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	defer producer.Close()

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)

	// The booking lifecycle reads the teacher's rules through the
	// availability service so first-time teachers get defaults here too.
	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityrepository.NewMongoAvailabilityRepository(cfg),
		bookingRepo,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		availabilityService,
		bookingValidator,
		producer,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
