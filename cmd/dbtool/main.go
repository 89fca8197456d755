package main

import (
	"database/sql"
	"log"

	"booking-capacity-service/internal/adapters/repositories"
	"booking-capacity-service/internal/config"
	"booking-capacity-service/internal/platform/db"
)

// dbtool initializes the schema and seeds reference data (fleet, postal
// codes, calendar exceptions) against Postgres when DATABASE_URL is set,
// otherwise against the local SQLite file.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
	} else {
		database, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedVehiclesFromJSON(database, cfg.VehicleSeedPath); err != nil {
		log.Fatalf("seeding vehicles failed: %v", err)
	}
	if err := repositories.SeedPostalCodesFromJSON(database, cfg.PostalSeedPath); err != nil {
		log.Fatalf("seeding postal codes failed: %v", err)
	}
	if err := repositories.SeedExceptionsFromJSON(database, cfg.ExceptionSeedPath); err != nil {
		log.Fatalf("seeding exceptions failed: %v", err)
	}
	log.Println("Seeding complete.")
}
