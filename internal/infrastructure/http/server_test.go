package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
	memrepo "github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	memstorage "github.com/mrops-br/catalog-api/internal/infrastructure/storage/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestServer(t *testing.T, maxUploadBytes int64) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	telem, err := telemetry.NewNoOpTelemetry(logger)
	if err != nil {
		t.Fatalf("NewNoOpTelemetry() error: %v", err)
	}
	tracer, meter := telem.Tracer(), telem.Meter()

	categories := memrepo.NewCategoryRepository(tracer, logger)
	products := memrepo.NewProductRepository(tracer, logger)
	images := memrepo.NewImageRepository(tracer, logger)
	store := memstorage.NewStorage()

	productService := service.NewProductService(categories, products, images, store, tracer, meter, logger)
	imageService := service.NewImageService(images, store, tracer, meter, logger)
	categoryService := service.NewCategoryService(categories, products, tracer, meter, logger)

	srv := NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, Handlers{
		Products:   handler.NewProductHandler(productService, logger, maxUploadBytes),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Images:     handler.NewImageHandler(imageService, logger),
	}, logger, telem)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createCategory(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/product-categories", strings.NewReader(`{"name":"`+name+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d", resp.StatusCode)
	}
	return decode[dto.CategoryResponse](t, resp).ID
}

func multipartProduct(t *testing.T, method, url string, fields map[string]string, files int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for i := 0; i < files; i++ {
		fw, err := mw.CreateFormFile("images", "photo.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = fw.Write(append(append([]byte{}, pngBytes...), byte(i)))
	}
	_ = mw.Close()

	req, _ := http.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_ProductLifecycle(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	catID := createCategory(t, ts, "Shoes")

	resp := do(t, multipartProduct(t, http.MethodPost, ts.URL+"/products", map[string]string{
		"name":        "Runner",
		"value":       "99.90",
		"description": "Lightweight running shoe",
		"categoryId":  catID,
	}, 2))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product status = %d", resp.StatusCode)
	}
	created := decode[dto.ProductResponse](t, resp)
	if len(created.Images) != 2 || created.Value.String() != "99.9" {
		t.Fatalf("unexpected product: %+v", created)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/product-images/"+created.Images[0].ID, nil))
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("get image = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = do(t, mustRequest(http.MethodDelete, ts.URL+"/product-images/"+created.Images[0].ID, nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete image status = %d", resp.StatusCode)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/products/"+created.ID, nil))
	got := decode[dto.ProductResponse](t, resp)
	if len(got.Images) != 1 || got.Images[0].ID != created.Images[1].ID {
		t.Errorf("images after delete = %+v", got.Images)
	}

	resp = do(t, mustRequest(http.MethodDelete, ts.URL+"/product-categories/"+catID, nil))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete category in use status = %d, want 409", resp.StatusCode)
	}

	req := mustRequest(http.MethodPut, ts.URL+"/products/"+created.ID, strings.NewReader(`{"name":"Trail Runner"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	if updated := decode[dto.ProductResponse](t, resp); updated.Name != "Trail Runner" || len(updated.Images) != 1 {
		t.Errorf("unexpected update: %+v", updated)
	}

	resp = do(t, mustRequest(http.MethodDelete, ts.URL+"/products/"+created.ID, nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete product status = %d", resp.StatusCode)
	}
	resp = do(t, mustRequest(http.MethodDelete, ts.URL+"/products/"+created.ID, nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/product-images/"+created.Images[1].ID, nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("image after cascade status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_Validation(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	catID := createCategory(t, ts, "Shoes")

	tests := []struct {
		name   string
		fields map[string]string
		want   int
	}{
		{"missing category", map[string]string{"name": "a", "value": "1", "description": "d", "categoryId": "nope"}, http.StatusNotFound},
		{"bad value", map[string]string{"name": "a", "value": "abc", "description": "d", "categoryId": catID}, http.StatusBadRequest},
		{"missing value", map[string]string{"name": "a", "description": "d", "categoryId": catID}, http.StatusBadRequest},
		{"blank name", map[string]string{"name": "", "value": "1", "description": "d", "categoryId": catID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, multipartProduct(t, http.MethodPost, ts.URL+"/products", tt.fields, 0))
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			body := decode[response.ErrorResponse](t, resp)
			if body.Message == "" {
				t.Error("error message missing")
			}
		})
	}

	req := mustRequest(http.MethodPost, ts.URL+"/products", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	if resp := do(t, req); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed JSON status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_CreateProductJSON(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	catID := createCategory(t, ts, "Shoes")

	post := func(body string) *http.Response {
		req := mustRequest(http.MethodPost, ts.URL+"/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, req)
	}

	resp := post(`{"name":"Runner","description":"d","categoryId":"` + catID + `"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing value status = %d, want 400", resp.StatusCode)
	}
	if body := decode[response.ErrorResponse](t, resp); !strings.Contains(body.Message, "value is required") {
		t.Errorf("missing value message = %q", body.Message)
	}

	resp = post(`{"name":"Runner","value":null,"description":"d","categoryId":"` + catID + `"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("null value status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/products", nil))
	if list := decode[[]dto.ProductResponse](t, resp); len(list) != 0 {
		t.Fatalf("rejected bodies created %d products", len(list))
	}

	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	resp = post(`{"name":"Runner","value":"0","description":"d","categoryId":"` + catID + `",` +
		`"images":[{"filename":"a.png","content":"` + encoded + `"},{"filename":"b.png","content":"` + encoded + `"}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create with images status = %d", resp.StatusCode)
	}
	created := decode[dto.ProductResponse](t, resp)
	if !created.Value.IsZero() || len(created.Images) != 2 {
		t.Fatalf("unexpected product: %+v", created)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/product-images/"+created.Images[0].ID, nil))
	content, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !bytes.Equal(content, pngBytes) {
		t.Errorf("stored image = %d %q", resp.StatusCode, content)
	}

	resp = post(`{"name":"Runner","value":"1","description":"d","categoryId":"` + catID + `","images":[{"filename":"a.png","content":"not base64!"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid base64 status = %d, want 400", resp.StatusCode)
	}

	req := mustRequest(http.MethodPut, ts.URL+"/products/"+created.ID,
		strings.NewReader(`{"images":[{"filename":"c.png","content":"`+encoded+`"}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp = do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update with images status = %d", resp.StatusCode)
	}
	if updated := decode[dto.ProductResponse](t, resp); len(updated.Images) != 3 {
		t.Errorf("images after update = %d, want 3", len(updated.Images))
	}
}

func TestServer_ImageMetadata(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	catID := createCategory(t, ts, "Shoes")

	resp := do(t, multipartProduct(t, http.MethodPost, ts.URL+"/products", map[string]string{
		"name": "Runner", "value": "1", "description": "d", "categoryId": catID,
	}, 1))
	created := decode[dto.ProductResponse](t, resp)
	if len(created.Images) != 1 {
		t.Fatalf("unexpected product: %+v", created)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/product-images/"+created.Images[0].ID+"/metadata", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metadata status = %d", resp.StatusCode)
	}
	meta := decode[dto.ImageResponse](t, resp)
	if meta.ID != created.Images[0].ID || meta.ProductID != created.ID || meta.StorageKey == "" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/product-images/missing/metadata", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing metadata status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_UploadTooLarge(t *testing.T) {
	ts := newTestServer(t, 64)
	catID := createCategory(t, ts, "Shoes")

	resp := do(t, multipartProduct(t, http.MethodPost, ts.URL+"/products", map[string]string{
		"name": "Runner", "value": "1", "description": "d", "categoryId": catID,
	}, 3))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	createCategory(t, ts, "Shoes")

	resp := do(t, mustRequest(http.MethodGet, ts.URL+"/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp = do(t, mustRequest(http.MethodGet, ts.URL+"/metrics", nil))
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "catalog_operations") {
		t.Errorf("metrics status = %d, catalog_operations missing", resp.StatusCode)
	}
}

func mustRequest(method, url string, body io.Reader) *http.Request {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		panic(err)
	}
	return req
}
