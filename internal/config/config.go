package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"ali-plastic-pos/pkg/database"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds runtime configuration for the application.
type Config struct {
	AppName   string `envconfig:"APP_NAME" default:"Ali Plastic POS"`
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"3000"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"ali_plastic"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBTimeZone  string `envconfig:"DB_TIMEZONE"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Empty RedisAddr disables the report cache and background jobs.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	AllowNegativeStock bool `envconfig:"ALLOW_NEGATIVE_STOCK" default:"true"`

	AdminUsername  string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword  string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	LoginRateLimit int    `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv()
}

// FromEnv populates Config from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && (cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret) {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Database maps the config onto connection options.
func (c *Config) Database() database.Options {
	return database.Options{
		DSN:      c.DatabaseURL,
		Host:     c.DBHost,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		Port:     c.DBPort,
		TimeZone: c.DBTimeZone,
		Debug:    !c.IsProduction(),
	}
}
