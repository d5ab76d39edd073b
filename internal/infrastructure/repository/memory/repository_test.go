package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func testDeps() (trace.Tracer, *slog.Logger) {
	return noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProductRepository_CRUD(t *testing.T) {
	tracer, logger := testDeps()
	repo := NewProductRepository(tracer, logger)
	ctx := context.Background()

	p, err := domain.NewProduct("Runner", decimal.RequireFromString("99.90"), "shoe", "c1")
	if err != nil {
		t.Fatalf("NewProduct() error: %v", err)
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Mutating the caller's copy must not leak into the store
	p.Name = "mutated"
	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if got.Name != "Runner" {
		t.Errorf("Name = %q, want %q", got.Name, "Runner")
	}

	desc := "updated"
	updated, err := repo.Update(ctx, p.ID, domain.ProductPatch{Description: &desc})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Description != desc || updated.Name != "Runner" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if _, err := repo.Update(ctx, "missing", domain.ProductPatch{Description: &desc}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrProductNotFound", err)
	}

	count, err := repo.CountByCategory(ctx, "c1")
	if err != nil || count != 1 {
		t.Errorf("CountByCategory() = %d, %v; want 1, nil", count, err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("second Delete() error = %v, want ErrProductNotFound", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("FindByID() after delete error = %v", err)
	}
}

func TestProductRepository_FindAllFilter(t *testing.T) {
	tracer, logger := testDeps()
	repo := NewProductRepository(tracer, logger)
	ctx := context.Background()

	for _, cat := range []string{"c1", "c2", "c1"} {
		p, err := domain.NewProduct("item", decimal.NewFromInt(1), "desc", cat)
		if err != nil {
			t.Fatalf("NewProduct() error: %v", err)
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	all, _ := repo.FindAll(ctx, domain.ProductFilter{})
	if len(all) != 3 {
		t.Errorf("FindAll() returned %d products, want 3", len(all))
	}
	c1, _ := repo.FindAll(ctx, domain.ProductFilter{CategoryID: "c1"})
	if len(c1) != 2 {
		t.Errorf("FindAll(c1) returned %d products, want 2", len(c1))
	}
}

func TestCategoryRepository(t *testing.T) {
	tracer, logger := testDeps()
	repo := NewCategoryRepository(tracer, logger)
	ctx := context.Background()

	c, _ := domain.NewCategory("Shoes")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	ok, err := repo.Exists(ctx, c.ID)
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v; want true", ok, err)
	}
	ok, _ = repo.Exists(ctx, "missing")
	if ok {
		t.Error("Exists(missing) = true")
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("FindByID(missing) error = %v", err)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	all, _ := repo.FindAll(ctx)
	if len(all) != 0 {
		t.Errorf("FindAll() after delete returned %d", len(all))
	}
}

func TestImageRepository_OrderAndDelete(t *testing.T) {
	tracer, logger := testDeps()
	repo := NewImageRepository(tracer, logger)
	ctx := context.Background()

	var ids []string
	for _, key := range []string{"a", "b", "c"} {
		img := domain.NewImage("p1", key)
		ids = append(ids, img.ID)
		if err := repo.Create(ctx, img); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	if err := repo.Create(ctx, domain.NewImage("p2", "other")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	images, err := repo.FindByProductID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByProductID() error: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("got %d images, want 3", len(images))
	}
	for i, img := range images {
		if img.ID != ids[i] {
			t.Errorf("image %d = %s, want %s", i, img.ID, ids[i])
		}
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.FindByID(ctx, ids[1]); !errors.Is(err, domain.ErrImageNotFound) {
		t.Errorf("FindByID() after delete error = %v", err)
	}
	if err := repo.Delete(ctx, ids[1]); !errors.Is(err, domain.ErrImageNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}
