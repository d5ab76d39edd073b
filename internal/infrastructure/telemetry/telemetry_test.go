package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLogger_InjectsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{ServiceName: "catalog-api", Environment: "test"}, slog.LevelInfo)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/products/{id}")

	logger.InfoContext(ctx, "hello")
	span.End()

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if record["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v", record["trace_id"])
	}
	if record["http.route"] != "/products/{id}" {
		t.Errorf("http.route = %v", record["http.route"])
	}
	if record["service.name"] != "catalog-api" {
		t.Errorf("service.name = %v", record["service.name"])
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{}, slog.LevelWarn)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record not written")
	}
}

func TestNewNoOpTelemetry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	telem, err := NewNoOpTelemetry(logger)
	if err != nil {
		t.Fatalf("NewNoOpTelemetry() error: %v", err)
	}

	counter, err := telem.Meter().Int64Counter("catalog.test")
	if err != nil {
		t.Fatalf("Int64Counter() error: %v", err)
	}
	counter.Add(context.Background(), 3)

	families, err := telem.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "catalog_test_total" {
			found = true
		}
	}
	if !found {
		t.Error("counter not exposed through the prometheus registry")
	}

	if err := telem.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}
