package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"booking-capacity-service/internal/adapters/geo"
	"booking-capacity-service/internal/adapters/notify"
	"booking-capacity-service/internal/adapters/repositories"
	"booking-capacity-service/internal/api"
	"booking-capacity-service/internal/config"
	"booking-capacity-service/internal/platform/db"
	"booking-capacity-service/internal/ports"
	"booking-capacity-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, redis) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// Initialize schema and seed reference data on startup for local runs.
	if err := initAndSeed(database, cfg); err != nil {
		log.Fatal(err)
	}

	postal := repositories.NewSqlitePostalDirectory(database)
	resolver, err := geo.NewStaticResolver(cfg.Depot(), cfg.ServiceRadiusKm, postal)
	if err != nil {
		log.Fatal(err)
	}

	calendar, err := services.NewCalendar(
		repositories.NewSqliteCalendarStore(database),
		cfg.OpenHour, cfg.CloseHour, cfg.SlotHours,
	)
	if err != nil {
		log.Fatal(err)
	}

	store := repositories.NewSqliteBookingStore(database)
	ledger := repositories.NewSqliteCapacityLedger(database)
	vehicles := repositories.NewSqliteVehicleRepository(database)

	var notifier ports.Notifier = notify.LogNotifier{}
	if cfg.RedisAddr != "" {
		redisNotifier := notify.NewRedisNotifier(cfg.RedisAddr, cfg.EventStream, time.Minute)
		defer redisNotifier.Close()
		notifier = redisNotifier
	}

	bookingService := &services.BookingService{
		Store:           store,
		Resolver:        resolver,
		Calendar:        calendar,
		Vehicles:        vehicles,
		Notifier:        notifier,
		PrecheckTimeout: cfg.PrecheckTimeout,
		CommitTimeout:   cfg.CommitTimeout,
	}
	availabilityService := &services.AvailabilityService{
		Resolver: resolver,
		Calendar: calendar,
		Ledger:   ledger,
		Vehicles: vehicles,
	}
	assignmentService := &services.AssignmentService{
		Store:    store,
		Vehicles: vehicles,
	}

	router := api.NewRouter(bookingService, availabilityService, assignmentService)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(database *sql.DB, cfg *config.Config) error {
	if err := repositories.InitSchema(database); err != nil {
		return err
	}

	if err := repositories.SeedVehiclesFromJSON(database, cfg.VehicleSeedPath); err != nil {
		return err
	}
	if err := repositories.SeedPostalCodesFromJSON(database, cfg.PostalSeedPath); err != nil {
		return err
	}
	if err := repositories.SeedExceptionsFromJSON(database, cfg.ExceptionSeedPath); err != nil {
		return err
	}

	return nil
}
