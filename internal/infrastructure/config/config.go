package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DatabaseMemory   = "memory"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	StorageMemory     = "memory"
	StorageFilesystem = "filesystem"
	StorageGCS        = "gcs"
)

type Config struct {
	Server   ServerConfig
	OTLP     OTLPConfig
	Log      LogConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

type LogConfig struct {
	Level slog.Level
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type StorageConfig struct {
	Driver      string
	Dir         string
	GCSBucket   string
	GCSPrefix   string
	GCSEndpoint string
}

type CatalogConfig struct {
	CascadeConcurrency int
	MaxUploadBytes     int64
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present; real env vars win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		OTLP: OTLPConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", true),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "catalog-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", DatabaseMemory)),
			DSN:    getEnv("DATABASE_DSN", "catalog.db"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
			Dir:         getEnv("STORAGE_DIR", "data/images"),
			GCSBucket:   getEnv("GCS_BUCKET", ""),
			GCSPrefix:   getEnv("GCS_PREFIX", "products"),
			GCSEndpoint: getEnv("GCS_ENDPOINT", ""),
		},
		Catalog: CatalogConfig{
			CascadeConcurrency: getEnvInt("CASCADE_CONCURRENCY", 4),
			MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "debug"))
	if err != nil {
		return nil, err
	}
	cfg.Log.Level = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and the settings each driver requires
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DatabaseMemory:
	case DatabaseSQLite, DatabasePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageFilesystem:
		if c.Storage.Dir == "" {
			return errors.New("STORAGE_DIR is required for filesystem storage")
		}
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for gcs storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Catalog.CascadeConcurrency < 1 {
		return fmt.Errorf("CASCADE_CONCURRENCY must be positive, got %d", c.Catalog.CascadeConcurrency)
	}
	if c.Catalog.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Catalog.MaxUploadBytes)
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
