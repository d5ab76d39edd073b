package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/sqldb"
	"github.com/mrops-br/catalog-api/internal/infrastructure/storage/filesystem"
	"github.com/mrops-br/catalog-api/internal/infrastructure/storage/gcs"
	memstorage "github.com/mrops-br/catalog-api/internal/infrastructure/storage/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

type repositories struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	images     domain.ImageRepository
	closer     io.Closer
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.NewLogger(os.Stdout, &cfg.OTLP, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(ctx, &cfg.OTLP, logger)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(logger)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.Tracer()
	meter := telem.Meter()

	logger.Info("Starting Catalog API",
		slog.String("database", cfg.Database.Driver),
		slog.String("storage", cfg.Storage.Driver),
	)

	repos, err := openRepositories(ctx, &cfg.Database, tracer, logger)
	if err != nil {
		logger.Error("Failed to open repositories", slog.String("error", err.Error()))
		return
	}
	if repos.closer != nil {
		defer repos.closer.Close()
	}

	store, closeStore, err := openStorage(ctx, &cfg.Storage, tracer, logger)
	if err != nil {
		logger.Error("Failed to open object storage", slog.String("error", err.Error()))
		return
	}
	defer closeStore()

	productService := service.NewProductService(repos.categories, repos.products, repos.images, store,
		tracer, meter, logger, service.WithCascadeConcurrency(cfg.Catalog.CascadeConcurrency))
	imageService := service.NewImageService(repos.images, store, tracer, meter, logger)
	categoryService := service.NewCategoryService(repos.categories, repos.products, tracer, meter, logger)

	server := http.NewServer(&cfg.Server, http.Handlers{
		Products:   handler.NewProductHandler(productService, logger, cfg.Catalog.MaxUploadBytes),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Images:     handler.NewImageHandler(imageService, logger),
	}, logger, telem)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")
}

func openRepositories(ctx context.Context, cfg *config.DatabaseConfig, tracer trace.Tracer, logger *slog.Logger) (*repositories, error) {
	switch cfg.Driver {
	case config.DatabaseSQLite, config.DatabasePostgres:
		db, err := sqldb.Open(ctx, sqldb.Dialect(cfg.Driver), cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &repositories{
			categories: sqldb.NewCategoryRepository(db, tracer, logger),
			products:   sqldb.NewProductRepository(db, tracer, logger),
			images:     sqldb.NewImageRepository(db, tracer, logger),
			closer:     db,
		}, nil
	case config.DatabaseMemory:
		return &repositories{
			categories: memory.NewCategoryRepository(tracer, logger),
			products:   memory.NewProductRepository(tracer, logger),
			images:     memory.NewImageRepository(tracer, logger),
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openStorage(ctx context.Context, cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ObjectStorage, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.StorageFilesystem:
		store, err := filesystem.NewStorage(cfg.Dir, tracer, logger)
		return store, noop, err
	case config.StorageGCS:
		client, err := gcs.NewClient(ctx, cfg.GCSEndpoint)
		if err != nil {
			return nil, noop, err
		}
		store, err := gcs.NewStorage(client, cfg.GCSBucket, cfg.GCSPrefix, tracer, logger)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, func() { _ = client.Close() }, nil
	case config.StorageMemory:
		return memstorage.NewStorage(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
