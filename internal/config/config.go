package config

import (
	"fmt"
	"log"
	"time"

	"booking-capacity-service/internal/domain"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full engine configuration, read from the environment with an
// optional .env file for local runs.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// SQLite path for local runs; DATABASE_URL switches dbtool to Postgres.
	DBPath      string `envconfig:"DB_PATH" default:"data/app.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	DepotLat        float64 `envconfig:"DEPOT_LAT" default:"33.4484"`
	DepotLon        float64 `envconfig:"DEPOT_LON" default:"-112.0740"`
	ServiceRadiusKm float64 `envconfig:"SERVICE_RADIUS_KM" default:"50"`

	// Business-hours template expanded into slots by the calendar.
	OpenHour  int `envconfig:"OPEN_HOUR" default:"8"`
	CloseHour int `envconfig:"CLOSE_HOUR" default:"18"`
	SlotHours int `envconfig:"SLOT_HOURS" default:"2"`

	RedisAddr   string `envconfig:"REDIS_ADDR"`
	EventStream string `envconfig:"EVENT_STREAM" default:"booking.events"`

	PrecheckTimeout time.Duration `envconfig:"PRECHECK_TIMEOUT" default:"2s"`
	CommitTimeout   time.Duration `envconfig:"COMMIT_TIMEOUT" default:"5s"`

	VehicleSeedPath   string `envconfig:"VEHICLE_SEED_PATH" default:"data/seeds/vehicles.json"`
	PostalSeedPath    string `envconfig:"POSTAL_SEED_PATH" default:"data/seeds/postal_codes.json"`
	ExceptionSeedPath string `envconfig:"EXCEPTION_SEED_PATH" default:"data/seeds/exceptions.json"`
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: parse environment: %w", err)
	}

	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return nil, fmt.Errorf("load config: OPEN_HOUR=%d CLOSE_HOUR=%d is not a valid window", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.SlotHours < 1 || (cfg.CloseHour-cfg.OpenHour)%cfg.SlotHours != 0 {
		return nil, fmt.Errorf("load config: SLOT_HOURS=%d must evenly divide the business day", cfg.SlotHours)
	}

	return &cfg, nil
}

// Depot returns the configured depot coordinate.
func (c *Config) Depot() domain.Coordinates {
	return domain.Coordinates{Lat: c.DepotLat, Lon: c.DepotLon}
}
