package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"askbot/internal/paramstore"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Mode selects how updates reach the bot
type Mode string

const (
	ModePolling Mode = "polling"
	ModeWebhook Mode = "webhook"
	ModeLambda  Mode = "lambda"
)

// Config holds all application configuration
type Config struct {
	BotToken      string
	AdminID       int64
	SerperAPIKey  string
	SerperURL     string
	Mode          Mode
	WebhookURL    string
	WebhookSecret string
	HTTPPort      int
	DatabaseURL   string
	Database      DatabaseConfig
	Redis         RedisConfig
	State         StateConfig
	ParamPrefix   string
	// BroadcastConcurrency caps parallel deliveries; 1 is sequential
	BroadcastConcurrency int
	LogLevel             string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// RedisConfig holds the conversation state store connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StateConfig controls conversation state persistence
type StateConfig struct {
	TTL time.Duration
	// Table is the DynamoDB table used in Lambda deployments
	Table string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:      os.Getenv("TELEGRAM_TOKEN"),
		SerperAPIKey:  os.Getenv("SERPER_API_KEY"),
		SerperURL:     getEnv("SERPER_URL", "https://google.serper.dev/search"),
		Mode:          Mode(strings.ToLower(getEnv("BOT_MODE", string(ModePolling)))),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "askbot"),
			User:     getEnv("DB_USER", "askbot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		State: StateConfig{
			Table: os.Getenv("STATE_TABLE"),
		},
		ParamPrefix: os.Getenv("PARAM_PREFIX"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.AdminID, err = cast.ToInt64E(getEnv("ADMIN_ID", "0")); err != nil {
		return nil, fmt.Errorf("ADMIN_ID: %w", err)
	}
	if cfg.HTTPPort, err = cast.ToIntE(getEnv("HTTP_PORT", "3000")); err != nil {
		return nil, fmt.Errorf("HTTP_PORT: %w", err)
	}
	if cfg.Redis.DB, err = cast.ToIntE(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.State.TTL, err = cast.ToDurationE(getEnv("STATE_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("STATE_TTL: %w", err)
	}
	if cfg.BroadcastConcurrency, err = cast.ToIntE(getEnv("BROADCAST_CONCURRENCY", "1")); err != nil {
		return nil, fmt.Errorf("BROADCAST_CONCURRENCY: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModePolling, ModeWebhook, ModeLambda:
	default:
		return fmt.Errorf("BOT_MODE must be one of polling, webhook, lambda, got %q", c.Mode)
	}

	// Secrets may come from Parameter Store instead of the environment.
	if c.ParamPrefix == "" {
		if err := c.validateSecrets(); err != nil {
			return err
		}
	}

	if c.Mode == ModeWebhook && c.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required in webhook mode")
	}
	if c.DatabaseURL == "" && c.Database.Password == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.BroadcastConcurrency < 1 {
		return fmt.Errorf("BROADCAST_CONCURRENCY must be at least 1")
	}
	if c.State.TTL <= 0 {
		return fmt.Errorf("STATE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateSecrets() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.SerperAPIKey == "" {
		return fmt.Errorf("SERPER_API_KEY is required")
	}
	return nil
}

// ResolveSecrets fills secrets missing from the environment from Parameter Store under ParamPrefix
func (c *Config) ResolveSecrets(ctx context.Context, params paramstore.Getter) error {
	if c.ParamPrefix != "" {
		secrets := []struct {
			key   string
			value *string
		}{
			{"TELEGRAM_TOKEN", &c.BotToken},
			{"SERPER_API_KEY", &c.SerperAPIKey},
		}
		for _, s := range secrets {
			if *s.value != "" {
				continue
			}
			v, err := params.GetParameter(ctx, paramstore.Name(c.ParamPrefix, s.key))
			if err != nil {
				return fmt.Errorf("resolve %s: %w", s.key, err)
			}
			*s.value = strings.TrimSpace(v)
		}
	}
	return c.validateSecrets()
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
