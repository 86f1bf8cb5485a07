// Package config loads runtime settings from an optional YAML file, an
// optional .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamo   = "dynamodb"
)

// Config holds every runtime setting.
type Config struct {
	Addr    string `yaml:"addr"`
	LogMode string `yaml:"log_mode"`

	Store       string `yaml:"store"`
	DatabaseURL string `yaml:"database_url"`

	AWSRegion      string `yaml:"aws_region"`
	DynamoTable    string `yaml:"dynamodb_table"`
	S3Bucket       string `yaml:"s3_bucket"`
	BedrockModelID string `yaml:"bedrock_model_id"`

	WindowDays      int           `yaml:"insights_window_days"`
	MaxWindowDays   int           `yaml:"insights_max_window_days"`
	FetchLimit      int           `yaml:"fetch_limit"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:            ":8080",
		LogMode:         "dev",
		Store:           StoreMemory,
		DynamoTable:     "NutriSnapMeals",
		S3Bucket:        "nutrisnap-images",
		BedrockModelID:  "anthropic.claude-3-5-haiku-20241022-v1:0",
		WindowDays:      7,
		MaxWindowDays:   90,
		FetchLimit:      100,
		FetchTimeout:    5 * time.Second,
		UpstreamTimeout: 30 * time.Second,
	}
}

// Load reads NUTRISNAP_CONFIG (YAML) if set, then .env if present, then the
// environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("NUTRISNAP_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: .env: %w", err)
	}

	var err error
	cfg.Addr = env("ADDR", cfg.Addr)
	cfg.LogMode = env("LOG_MODE", cfg.LogMode)
	cfg.Store = env("STORE", cfg.Store)
	cfg.DatabaseURL = env("DATABASE_URL", cfg.DatabaseURL)
	cfg.AWSRegion = env("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoTable = env("DYNAMODB_TABLE", cfg.DynamoTable)
	cfg.S3Bucket = env("S3_BUCKET", cfg.S3Bucket)
	cfg.BedrockModelID = env("BEDROCK_MODEL_ID", cfg.BedrockModelID)
	if cfg.WindowDays, err = envInt("INSIGHTS_WINDOW_DAYS", cfg.WindowDays); err != nil {
		return cfg, err
	}
	if cfg.MaxWindowDays, err = envInt("INSIGHTS_MAX_WINDOW_DAYS", cfg.MaxWindowDays); err != nil {
		return cfg, err
	}
	if cfg.FetchLimit, err = envInt("FETCH_LIMIT", cfg.FetchLimit); err != nil {
		return cfg, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return cfg, err
	}
	if cfg.UpstreamTimeout, err = envDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreDynamo:
		if c.DynamoTable == "" || c.AWSRegion == "" {
			return errors.New("config: DYNAMODB_TABLE and AWS_REGION are required for the dynamodb store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.WindowDays <= 0 || c.MaxWindowDays < c.WindowDays {
		return fmt.Errorf("config: window days %d must be positive and at most %d", c.WindowDays, c.MaxWindowDays)
	}
	if c.FetchLimit <= 0 {
		return fmt.Errorf("config: fetch limit must be positive, got %d", c.FetchLimit)
	}
	if c.FetchTimeout <= 0 || c.UpstreamTimeout <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	return nil
}

// UsesAWS reports whether the AWS-backed collaborators should be wired.
func (c Config) UsesAWS() bool {
	return c.AWSRegion != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
