// Package gcs stores product images in a Google Cloud Storage bucket.
//
// Layout: <bucket>/<prefix><key>. The key returned to callers never contains the prefix,
// so the same image metadata works against any adapter.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/mrops-br/catalog-api/internal/domain"
	objstorage "github.com/mrops-br/catalog-api/internal/infrastructure/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.ObjectStorage = (*Storage)(nil)

// Storage is a GCS adapter for domain.ObjectStorage
type Storage struct {
	client *storage.Client
	bucket string
	prefix string
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStorage wraps an existing client. prefix may be empty; a trailing slash is added otherwise.
func NewStorage(client *storage.Client, bucket, prefix string, tracer trace.Tracer, logger *slog.Logger) (*Storage, error) {
	if client == nil {
		return nil, errors.New("gcs storage: client is nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs storage: bucket is empty")
	}
	return &Storage{
		client: client,
		bucket: bucket,
		prefix: normalizePrefix(prefix),
		tracer: tracer,
		logger: logger,
	}, nil
}

// Save uploads data under a fresh key
func (s *Storage) Save(ctx context.Context, data []byte, suggestedName string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "GCSStorage.Save")
	defer span.End()

	key := objstorage.NewKey(suggestedName)
	object := s.objectName(key)
	span.SetAttributes(
		attribute.String("storage.bucket", s.bucket),
		attribute.String("storage.object", object),
		attribute.Int("storage.size", len(data)),
	)

	w := s.client.Bucket(s.bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = mimetype.Detect(data).String()
	w.Metadata = map[string]string{
		"uploadedAt":   time.Now().UTC().Format(time.RFC3339),
		"originalName": suggestedName,
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upload object")
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to finalize object")
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	s.logger.DebugContext(ctx, "Object uploaded",
		slog.String("bucket", s.bucket),
		slog.String("object", object),
		slog.String("content_type", w.ContentType),
	)

	span.SetStatus(codes.Ok, "Object uploaded")
	return key, nil
}

// Delete removes the object; storage.ErrObjectNotExist counts as success
func (s *Storage) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "GCSStorage.Delete")
	defer span.End()

	if err := objstorage.ValidateKey(key); err != nil {
		return err
	}
	object := s.objectName(key)
	span.SetAttributes(
		attribute.String("storage.bucket", s.bucket),
		attribute.String("storage.object", object),
	)

	err := s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete object")
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.DebugContext(ctx, "Object deleted",
		slog.String("bucket", s.bucket),
		slog.String("object", object),
	)

	span.SetStatus(codes.Ok, "Object deleted")
	return nil
}

// Read downloads the whole object
func (s *Storage) Read(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "GCSStorage.Read")
	defer span.End()

	if err := objstorage.ValidateKey(key); err != nil {
		return nil, err
	}
	object := s.objectName(key)
	span.SetAttributes(
		attribute.String("storage.bucket", s.bucket),
		attribute.String("storage.object", object),
	)

	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		span.SetStatus(codes.Error, "Object not found")
		return nil, domain.ErrObjectNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to open object")
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read object")
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	span.SetStatus(codes.Ok, "Object read")
	return data, nil
}

func (s *Storage) objectName(key string) string {
	return s.prefix + key
}

func normalizePrefix(prefix string) string {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
