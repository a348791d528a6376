package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config is the process configuration, read from the environment (and .env when present).
// Provider credentials are optional here: a missing key only fails the call that needs it.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Environment    string   `env:"APP_ENV" envDefault:"development"`
	AppURL         string   `env:"APP_URL" envDefault:"http://localhost:3000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Database  DatabaseConfig
	Supabase  SupabaseConfig
	Storage   StorageConfig
	Stripe    StripeConfig
	Replicate ReplicateConfig
}

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	URL        string `env:"POSTGRES_URL"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"herotime.db"`
}

type SupabaseConfig struct {
	URL       string `env:"SUPABASE_URL"`
	AnonKey   string `env:"SUPABASE_ANON_KEY"`
	JWTSecret string `env:"SUPABASE_JWT_SECRET"`
	JWKSURL   string `env:"SUPABASE_JWKS_URL"`
}

// StorageConfig points at the S3 protocol endpoint of the object store.
type StorageConfig struct {
	Endpoint        string `env:"STORAGE_ENDPOINT"`
	Region          string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY"`
}

type StripeConfig struct {
	SecretKey      string `env:"STRIPE_SECRET_KEY"`
	PublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`
	ProPriceID     string `env:"STRIPE_PRO_PLAN_PRICE_ID"`
	PremiumPriceID string `env:"STRIPE_PREMIUM_PLAN_PRICE_ID"`
}

type ReplicateConfig struct {
	APIKey      string        `env:"REPLICATE_API_KEY"`
	Model       string        `env:"REPLICATE_MODEL" envDefault:"bytedance/seedream-4"`
	MaxDuration time.Duration `env:"REPLICATE_MAX_DURATION" envDefault:"300s"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.AppURL = strings.TrimRight(strings.TrimSpace(c.AppURL), "/")
	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))

	if c.Storage.Endpoint == "" && c.Supabase.URL != "" {
		c.Storage.Endpoint = c.Supabase.URL + "/storage/v1/s3"
	}
	if c.Supabase.JWKSURL == "" && c.Supabase.URL != "" {
		c.Supabase.JWKSURL = c.Supabase.URL + "/auth/v1/.well-known/jwks.json"
	}

	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
