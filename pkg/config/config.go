package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirebase = "firebase"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort  string
	Environment string
	AppOrigin   string

	DataBackend                string
	FirebaseProject            string
	FirebaseApiKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	JWTSecret string
	JWTExpiry int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	BidRatePerMinute     int
	APIRatePerMinute     int
	AuctionSweepInterval time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppOrigin:   getEnv("APP_ORIGIN", "http://localhost:3000"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:             getEnv("FIREBASE_API_KEY", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry: getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		BidRatePerMinute:     int(getEnvAsInt64("BID_RATE_PER_MINUTE", 10)),
		APIRatePerMinute:     int(getEnvAsInt64("API_RATE_PER_MINUTE", 120)),
		AuctionSweepInterval: getEnvAsDuration("AUCTION_SWEEP_INTERVAL", time.Minute),
	}

	defaultBackend := BackendFirebase
	if config.Environment == "development" && config.FirebaseProject == "" {
		defaultBackend = BackendMemory
	}
	config.DataBackend = getEnv("DATA_BACKEND", defaultBackend)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.DataBackend {
	case BackendMemory:
	case BackendFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s backend", BackendFirebase)
		}
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the %s backend", BackendFirebase)
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}

	if c.BidRatePerMinute <= 0 || c.APIRatePerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.AuctionSweepInterval <= 0 {
		return fmt.Errorf("AUCTION_SWEEP_INTERVAL must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
