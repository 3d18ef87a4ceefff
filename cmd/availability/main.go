package main

import (
	availhandler "pitchside/internal/availability/handler"
	availrepository "pitchside/internal/availability/repository"
	availservice "pitchside/internal/availability/service"
	availvalidator "pitchside/internal/availability/validator"
	bookinghandler "pitchside/internal/bookings/handler"
	bookingrepository "pitchside/internal/bookings/repository"
	bookingservice "pitchside/internal/bookings/service"
	bookingvalidator "pitchside/internal/bookings/validator"
	facilityhandler "pitchside/internal/facilities/handler"
	facilityrepository "pitchside/internal/facilities/repository"
	facilityservice "pitchside/internal/facilities/service"
	facilityvalidator "pitchside/internal/facilities/validator"
	holdhandler "pitchside/internal/holds/handler"
	holdrepository "pitchside/internal/holds/repository"
	holdservice "pitchside/internal/holds/service"
	holdvalidator "pitchside/internal/holds/validator"
	pricinghandler "pitchside/internal/pricing/handler"
	pricingrepository "pitchside/internal/pricing/repository"
	pricingservice "pitchside/internal/pricing/service"
	pricingvalidator "pitchside/internal/pricing/validator"
	"pitchside/pkg/app"
	"pitchside/pkg/config"
	"pitchside/pkg/contracts"
	"pitchside/pkg/kafka"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting availability service")

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Event producer unavailable, events disabled", "error", err)
	}
	events := kafka.NewEvents(producer, cfg.Log)

	handlers := initServices(cfg, events)

	serverApp := app.NewApplication(cfg, ServiceName)
	serverApp.SetEventsProducer(producer)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, events *kafka.Events) []contracts.Handler {
	engine := availservice.NewEngine(cfg.Clock, cfg.SlotGranularityMin, cfg.Log)
	snapshotRepo := availrepository.NewMongoSnapshotRepository(cfg)

	availabilityService := availservice.NewAvailabilityService(
		snapshotRepo,
		engine,
		availvalidator.NewAvailabilityValidator(cfg.Log),
		cfg.Log,
	)

	pricingService := pricingservice.NewPricingService(
		pricingrepository.NewMongoPromoRepository(cfg),
		pricingvalidator.NewPricingValidator(cfg.Log),
		cfg,
		cfg.Log,
	)

	facilityService := facilityservice.NewFacilityService(
		facilityrepository.NewMongoFacilityRepository(cfg),
		facilityrepository.NewMongoSlotRepository(cfg),
		facilityrepository.NewMongoRuleRepository(cfg),
		facilityvalidator.NewFacilityValidator(cfg.Log),
		cfg,
	)

	holdService := holdservice.NewHoldService(
		holdrepository.NewMongoHoldRepository(cfg),
		snapshotRepo,
		engine,
		pricingService,
		holdvalidator.NewHoldValidator(cfg.Log),
		events,
		cfg.Clock,
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingrepository.NewMongoBookingRepository(cfg),
		bookingrepository.NewReservationLockRepository(cfg),
		snapshotRepo,
		engine,
		pricingService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		events,
		cfg.Clock,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		facilityhandler.NewFacilityHandler(facilityService, cfg.Log),
		availhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		pricinghandler.NewPricingHandler(pricingService, cfg.Log),
		holdhandler.NewHoldHandler(holdService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
	}
}
