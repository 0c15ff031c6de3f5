package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	App      AppConfig
	Jobs     JobsConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// DevAuth trusts X-User-Id headers instead of verifying ID tokens.
	DevAuth bool
}

type StoreConfig struct {
	Driver string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

type JobsConfig struct {
	// AutoArchiveSpec is a cron spec; empty disables the job.
	AutoArchiveSpec string
	TimeZone        string
}

type LimitsConfig struct {
	TicketsPerMinute int
	TicketBurst      int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			DevAuth:        getEnvAsBool("DEV_AUTH", false),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreFirestore),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "squadline-api"),
		},
		Jobs: JobsConfig{
			AutoArchiveSpec: getEnv("AUTO_ARCHIVE_CRON", ""),
			TimeZone:        getEnv("TEAM_TIMEZONE", "Europe/Berlin"),
		},
		Limits: LimitsConfig{
			TicketsPerMinute: getEnvAsInt("TICKETS_PER_MINUTE", 2),
			TicketBurst:      getEnvAsInt("TICKET_BURST", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_DRIVER=%s", StoreFirestore)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if !c.Server.DevAuth && c.Firebase.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required unless DEV_AUTH is set")
	}
	if c.Server.DevAuth && c.IsProduction() {
		return fmt.Errorf("DEV_AUTH must not be enabled in production")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Limits.TicketsPerMinute <= 0 || c.Limits.TicketBurst <= 0 {
		return fmt.Errorf("ticket limits must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Location is the zone in which "today" is evaluated for scheduled jobs.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Jobs.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TEAM_TIMEZONE %q: %w", c.Jobs.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("invalid boolean, using default")
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
