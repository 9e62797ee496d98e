package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Engine    EngineConfig
	Store     StoreConfig
	Blob      BlobConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level string
}

// EngineConfig sizes the per-group worker pool. Zero means one worker per CPU.
type EngineConfig struct {
	Workers int
}

// StoreConfig selects where run results are persisted.
type StoreConfig struct {
	Driver      string // memory, sqlite or postgres
	SQLitePath  string
	PostgresDSN string
}

// BlobConfig selects where produced workbooks are uploaded.
type BlobConfig struct {
	Driver      string // none, fs or s3
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// SchedulerConfig drives the recurring run. An empty schedule disables it.
type SchedulerConfig struct {
	Schedule string
	Input    string
	Workflow string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	workers, err := getenvInt("REPLEN_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	pathStyle, err := getenvBool("REPLEN_BLOB_S3_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Engine: EngineConfig{
			Workers: workers,
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getenvWithDefault("REPLEN_STORE_DRIVER", "memory")),
			SQLitePath:  getenvWithDefault("REPLEN_SQLITE_PATH", "workbot.db"),
			PostgresDSN: os.Getenv("REPLEN_POSTGRES_DSN"),
		},
		Blob: BlobConfig{
			Driver:      strings.ToLower(getenvWithDefault("REPLEN_BLOB_DRIVER", "none")),
			Dir:         getenvWithDefault("REPLEN_BLOB_DIR", "artifacts"),
			S3Bucket:    os.Getenv("REPLEN_BLOB_S3_BUCKET"),
			S3Region:    getenvWithDefault("REPLEN_BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:  os.Getenv("REPLEN_BLOB_S3_ENDPOINT"),
			S3PathStyle: pathStyle,
		},
		Scheduler: SchedulerConfig{
			Schedule: os.Getenv("REPLEN_CRON_SCHEDULE"),
			Input:    os.Getenv("REPLEN_CRON_INPUT"),
			Workflow: strings.ToLower(getenvWithDefault("REPLEN_CRON_WORKFLOW", "replen")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Engine.Workers < 0 {
		return errors.New("REPLEN_WORKERS must not be negative")
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("REPLEN_SQLITE_PATH must be provided for the sqlite store")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return errors.New("REPLEN_POSTGRES_DSN must be provided for the postgres store")
		}
	default:
		return fmt.Errorf("REPLEN_STORE_DRIVER %q is not one of memory, sqlite, postgres", c.Store.Driver)
	}

	switch c.Blob.Driver {
	case "none":
	case "fs":
		if c.Blob.Dir == "" {
			return errors.New("REPLEN_BLOB_DIR must be provided for the fs blob driver")
		}
	case "s3":
		if c.Blob.S3Bucket == "" {
			return errors.New("REPLEN_BLOB_S3_BUCKET must be provided for the s3 blob driver")
		}
	default:
		return fmt.Errorf("REPLEN_BLOB_DRIVER %q is not one of none, fs, s3", c.Blob.Driver)
	}

	if c.Scheduler.Schedule != "" && c.Scheduler.Input == "" {
		return errors.New("REPLEN_CRON_INPUT must be provided when REPLEN_CRON_SCHEDULE is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
