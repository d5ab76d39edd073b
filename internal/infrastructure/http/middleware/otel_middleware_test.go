package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(StructuredLogger(logger))
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/p1", nil))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", record["level"])
	}
	if record["http.route"] != "/products/{id}" {
		t.Errorf("http.route = %v", record["http.route"])
	}
	if record["http.response.status_code"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v", record["http.response.status_code"])
	}
}

func TestHTTPRouteContext(t *testing.T) {
	var route string
	r := chi.NewRouter()
	r.Route("/product-images", func(r chi.Router) {
		r.With(HTTPRouteContext()).Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			route = telemetry.HTTPRouteFromContext(r.Context())
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/product-images/i1", nil))

	if route != "/product-images/{id}" {
		t.Errorf("route = %q", route)
	}
}

func TestMetricMiddlewarePassThrough(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	r := chi.NewRouter()
	r.Use(ActiveRequestsMiddleware(meter), DurationMillisecondsMiddleware(meter))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}
