package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress       string
	FirebaseDatabaseURL string
	FirebaseCredentials string
	NotifyURL           string
	BillingTimezone     *time.Location
	SchedulerInterval   time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	loc, err := time.LoadLocation(getEnv("BILLING_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_TIMEZONE: %v", err)
	}

	interval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %v", err)
	}
	if interval > time.Minute {
		// The billing window is ten minutes wide; polling slower than
		// once a minute risks missing it entirely.
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be one minute or less, got %s", interval)
	}

	return &Config{
		ServerAddress:       getEnv("SERVER_ADDRESS", ":8000"),
		FirebaseDatabaseURL: os.Getenv("FIREBASE_DATABASE_URL"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
		NotifyURL:           getEnv("NOTIFY_URL", "https://tenantvolt-5cd875450cc3.herokuapp.com/api/bills/send-notification/"),
		BillingTimezone:     loc,
		SchedulerInterval:   interval,
	}, nil
}

// ValidateFirebase checks the settings required to reach the Realtime
// Database. Skipped when the server runs against the in-memory store.
func (c *Config) ValidateFirebase() error {
	if c.FirebaseDatabaseURL == "" {
		return fmt.Errorf("FIREBASE_DATABASE_URL environment variable is not set")
	}
	if c.FirebaseCredentials == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_JSON environment variable is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
