package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.ObjectStorage = (*Storage)(nil)

// Storage keeps objects as plain files under a root directory
type Storage struct {
	root   string
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStorage creates the root directory if needed and returns a filesystem storage
func NewStorage(root string, tracer trace.Tracer, logger *slog.Logger) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage directory cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Storage{root: root, tracer: tracer, logger: logger}, nil
}

// Save writes data to a temporary file and renames it into place
func (s *Storage) Save(ctx context.Context, data []byte, suggestedName string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "FilesystemStorage.Save")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := storage.NewKey(suggestedName)
	span.SetAttributes(
		attribute.String("storage.key", key),
		attribute.Int("storage.size", len(data)),
	)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create temp file")
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to write object")
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to move object into place")
		return "", fmt.Errorf("failed to move object into place: %w", err)
	}

	s.logger.DebugContext(ctx, "Object written",
		slog.String("storage_key", key),
		slog.Int("size", len(data)),
	)

	span.SetStatus(codes.Ok, "Object written")
	return key, nil
}

// Delete removes the file; a missing file is not an error
func (s *Storage) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "FilesystemStorage.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to remove object")
		return fmt.Errorf("failed to remove object: %w", err)
	}

	s.logger.DebugContext(ctx, "Object removed", slog.String("storage_key", key))
	span.SetStatus(codes.Ok, "Object removed")
	return nil
}

// Read returns the file contents
func (s *Storage) Read(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "FilesystemStorage.Read")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		span.SetStatus(codes.Error, "Object not found")
		return nil, domain.ErrObjectNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read object")
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	span.SetStatus(codes.Ok, "Object read")
	return data, nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.root, key)
}
