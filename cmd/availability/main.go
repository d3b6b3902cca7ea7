package main

import (
	"github.com/joho/godotenv"

	"tutorhub/internal/availability/handler"
	"tutorhub/internal/availability/repository"
	"tutorhub/internal/availability/service"
	"tutorhub/internal/availability/validator"
	bookingrepository "tutorhub/internal/bookings/repository"
	"tutorhub/pkg/app"
	"tutorhub/pkg/config"
)

const ServiceName = "availability"

func main() {
	_ = godotenv.Load()
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.LogConfiguration()
	cfg.Log.Info("Starting Availability service")

	availabilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	availabilityValidator := validator.NewAvailabilityValidator(cfg.Log)
	availabilityRepo := repository.NewMongoAvailabilityRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	availabilityService := service.NewAvailabilityService(
		availabilityRepo,
		bookingRepo,
		availabilityValidator,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
