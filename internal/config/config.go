// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Catalog Configuration
	PageSize           int           `mapstructure:"CATALOG_PAGE_SIZE"`
	MirrorPollInterval time.Duration `mapstructure:"MIRROR_POLL_INTERVAL_SECONDS"`

	// Plan / visibility policy
	PlanCheckFailClosed bool `mapstructure:"PLAN_CHECK_FAIL_CLOSED"`
	PlanPeriodDays      int  `mapstructure:"PLAN_PERIOD_DAYS"`

	// TOP promotion
	TopExpiryCheckInterval time.Duration `mapstructure:"TOP_EXPIRY_CHECK_INTERVAL_SECONDS"`
	CheckoutPollInterval   time.Duration `mapstructure:"CHECKOUT_POLL_INTERVAL_MS"`
	CheckoutPollTimeout    time.Duration `mapstructure:"CHECKOUT_POLL_TIMEOUT_SECONDS"`
	CheckoutSuccessURL     string        `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL      string        `mapstructure:"CHECKOUT_CANCEL_URL"`

	// Stripe price IDs (synchronized by the payments extension)
	StripePriceTop1Day      string `mapstructure:"STRIPE_PRICE_TOP_1D"`
	StripePriceTop7Days     string `mapstructure:"STRIPE_PRICE_TOP_7D"`
	StripePriceTop30Days    string `mapstructure:"STRIPE_PRICE_TOP_30D"`
	StripePricePlanHobby    string `mapstructure:"STRIPE_PRICE_PLAN_HOBBY"`
	StripePricePlanBusiness string `mapstructure:"STRIPE_PRICE_PLAN_BUSINESS"`

	// Cron Jobs
	PlanEnforcementSchedule string `mapstructure:"PLAN_ENFORCEMENT_SCHEDULE"`

	// Pending-activation state files
	StateDir string `mapstructure:"STATE_DIR"`

	// Fallback store (gorm)
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBPath            string        `mapstructure:"DB_PATH"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration (empty URL disables the index mirror)
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("CATALOG_PAGE_SIZE", 40)
	v.SetDefault("MIRROR_POLL_INTERVAL_SECONDS", 30)

	v.SetDefault("PLAN_CHECK_FAIL_CLOSED", false)
	v.SetDefault("PLAN_PERIOD_DAYS", 30)

	v.SetDefault("TOP_EXPIRY_CHECK_INTERVAL_SECONDS", 60)
	v.SetDefault("CHECKOUT_POLL_INTERVAL_MS", 700)
	v.SetDefault("CHECKOUT_POLL_TIMEOUT_SECONDS", 60)
	v.SetDefault("CHECKOUT_SUCCESS_URL", "https://inzerio.cz/top-ads.html?payment=success")
	v.SetDefault("CHECKOUT_CANCEL_URL", "https://inzerio.cz/top-ads.html?payment=canceled")

	v.SetDefault("STRIPE_PRICE_TOP_1D", "")
	v.SetDefault("STRIPE_PRICE_TOP_7D", "")
	v.SetDefault("STRIPE_PRICE_TOP_30D", "")
	v.SetDefault("STRIPE_PRICE_PLAN_HOBBY", "")
	v.SetDefault("STRIPE_PRICE_PLAN_BUSINESS", "")

	v.SetDefault("PLAN_ENFORCEMENT_SCHEDULE", "@hourly")

	v.SetDefault("STATE_DIR", "./state")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "./state/catalog.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "inzerio_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("ELASTICSEARCH_URL", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.MirrorPollInterval = time.Duration(v.GetInt("MIRROR_POLL_INTERVAL_SECONDS")) * time.Second
	cfg.TopExpiryCheckInterval = time.Duration(v.GetInt("TOP_EXPIRY_CHECK_INTERVAL_SECONDS")) * time.Second
	cfg.CheckoutPollInterval = time.Duration(v.GetInt("CHECKOUT_POLL_INTERVAL_MS")) * time.Millisecond
	cfg.CheckoutPollTimeout = time.Duration(v.GetInt("CHECKOUT_POLL_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return &cfg, nil
}
