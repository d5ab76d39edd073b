package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Database.Driver != DatabaseMemory || cfg.Storage.Driver != StorageMemory {
		t.Errorf("unexpected drivers: %q / %q", cfg.Database.Driver, cfg.Storage.Driver)
	}
	if !cfg.OTLP.Enabled {
		t.Error("OTLP should be enabled by default")
	}
	if cfg.Log.Level != slog.LevelDebug {
		t.Errorf("Log.Level = %v, want debug", cfg.Log.Level)
	}
	if cfg.Catalog.CascadeConcurrency != 4 {
		t.Errorf("CascadeConcurrency = %d, want 4", cfg.Catalog.CascadeConcurrency)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "/tmp/catalog.db")
	t.Setenv("STORAGE_DRIVER", "filesystem")
	t.Setenv("STORAGE_DIR", "/tmp/images")
	t.Setenv("CASCADE_CONCURRENCY", "8")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.OTLP.Enabled || cfg.Log.Level != slog.LevelWarn {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Database.Driver != DatabaseSQLite || cfg.Database.DSN != "/tmp/catalog.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Storage.Driver != StorageFilesystem || cfg.Storage.Dir != "/tmp/images" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Catalog.CascadeConcurrency != 8 {
		t.Errorf("CascadeConcurrency = %d, want 8", cfg.Catalog.CascadeConcurrency)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv does not override variables that are already set, so clear the key first.
	t.Setenv("GCS_BUCKET", "")
	os.Unsetenv("GCS_BUCKET")
	t.Setenv("STORAGE_DRIVER", "gcs")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GCS_BUCKET=catalog-images\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Storage.GCSBucket != "catalog-images" {
		t.Errorf("GCSBucket = %q, want catalog-images", cfg.Storage.GCSBucket)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DatabaseMemory},
			Storage:  StorageConfig{Driver: StorageMemory},
			Catalog:  CatalogConfig{CascadeConcurrency: 1, MaxUploadBytes: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown database", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DatabasePostgres }},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "s3" }},
		{"gcs without bucket", func(c *Config) { c.Storage.Driver = StorageGCS }},
		{"zero concurrency", func(c *Config) { c.Catalog.CascadeConcurrency = 0 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_BadLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid LOG_LEVEL")
	}
}
