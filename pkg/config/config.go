package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	MediaRoot               string        `mapstructure:"MEDIA_ROOT"`
	CacheTTL                time.Duration `mapstructure:"CACHE_TTL"`
	CacheSize               int           `mapstructure:"CACHE_SIZE"`
	PageSize                int           `mapstructure:"PAGE_SIZE"`
	MetricsEnabled          bool          `mapstructure:"METRICS_ENABLED"`
}

// Load reads an optional .env file, then config.yml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using the environment", "error", err)
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "file:blog.db?_foreign_keys=1")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "blog")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("CACHE_TTL", "20s")
	v.SetDefault("CACHE_SIZE", 256)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("METRICS_ENABLED", true)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.PageSize < 1 {
		return errors.New("PAGE_SIZE must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL must not be negative")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be changed and at least 32 characters in production")
		}
	}
	return nil
}
