package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string `validate:"required"`
	HTTPPort string `validate:"required,numeric"`

	DatabaseDriver string `validate:"oneof=pgx sqlite3"`
	DatabaseURL    string
	RedisAddr      string
	QueueBackend   string `validate:"oneof=memory redis"`

	AuthMode      string `validate:"oneof=static jwt"`
	JWTIssuer     string
	JWTSigningKey string        `validate:"required_if=AuthMode jwt"`
	AccessTTL     time.Duration `validate:"gt=0"`

	RateLimitPerMin int `validate:"gte=0"`
	CORSOrigins     []string

	CurrentTerm             string  `validate:"required"`
	RequiredHours           float64 `validate:"gt=0"`
	OnTrackThreshold        float64 `validate:"gte=0,lte=100"`
	NeedsAttentionThreshold float64 `validate:"gte=0,ltefield=OnTrackThreshold"`
	SeedDemoData            bool

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Load reads an optional .env file, then builds the config from the
// environment with sensible defaults.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring unreadable .env: %v", err)
	}

	cfg := App{
		Env:                     getEnv("APP_ENV", "dev"),
		HTTPPort:                getEnv("HTTP_PORT", "8001"),
		DatabaseDriver:          getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:             getEnv("DATABASE_URL", "file:myimpact.db?_busy_timeout=5000"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:            getEnv("QUEUE_BACKEND", "memory"),
		AuthMode:                getEnv("AUTH_MODE", "static"),
		JWTIssuer:               getEnv("JWT_ISSUER", "myimpact"),
		JWTSigningKey:           getEnv("JWT_SIGNING_KEY", ""),
		AccessTTL:               durationEnv("ACCESS_TTL", 15*time.Minute),
		RateLimitPerMin:         intEnv("RATE_LIMIT_PER_MIN", 120),
		CORSOrigins:             listEnv("CORS_ORIGINS", []string{"*"}),
		CurrentTerm:             getEnv("CURRENT_TERM", "spring-2026"),
		RequiredHours:           floatEnv("REQUIRED_HOURS", 20),
		OnTrackThreshold:        floatEnv("ON_TRACK_THRESHOLD", 50),
		NeedsAttentionThreshold: floatEnv("NEEDS_ATTENTION_THRESHOLD", 25),
		SeedDemoData:            boolEnv("SEED_DEMO_DATA", true),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFile:                 getEnv("LOG_FILE", ""),
	}
	if err := Validate(cfg); err != nil {
		return App{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func Validate(cfg App) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			log.Printf("invalid bool for %s, using fallback %v", key, fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Printf("invalid int for %s, using fallback %d", key, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Printf("invalid float for %s, using fallback %v", key, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
