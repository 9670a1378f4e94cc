package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	AppPort   string
	JWTSecret string
	SeedData  bool
	// SeedAdminPassword creates an "admin" account during seeding when set.
	SeedAdminPassword string

	Database Database
	RabbitMQ RabbitMQ
	Stripe   Stripe
	Log      Log
}

// Database selects the GORM dialector.
type Database struct {
	Driver string // sqlite or postgres
	DSN    string
}

// RabbitMQ holds broker settings. An empty URL disables event publishing.
type RabbitMQ struct {
	URL string
}

// Stripe holds the payment gateway settings.
type Stripe struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
}

// Log configures the zap logger.
type Log struct {
	Level       string
	Development bool
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

// loadEnvFile reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "kedai.db")
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("PAYMENT_CURRENCY", "pkr")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("SEED_DATA", false)
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SeedData:          v.GetBool("SEED_DATA"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		Database: Database{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		RabbitMQ: RabbitMQ{URL: v.GetString("RABBITMQ_URL")},
		Stripe: Stripe{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
			Timeout:       v.GetDuration("GATEWAY_TIMEOUT"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Stripe.Timeout <= 0 {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", cfg.Stripe.Timeout)
	}
	return cfg, nil
}
