package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/catalog"
)

type stubStore struct {
	products     []catalog.Product
	listCalls    int
	lastCreated  catalog.Product
	deleteCalled bool
}

func (s *stubStore) CreateCategory(ctx context.Context, name string) (catalog.Category, error) {
	return catalog.Category{ID: "c1", Name: name, CreatedAt: time.Now()}, nil
}

func (s *stubStore) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func (s *stubStore) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	return catalog.Category{}, catalog.ErrNotFound
}

func (s *stubStore) DeleteCategory(ctx context.Context, id string) error { return nil }

func (s *stubStore) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	p.ID = "p1"
	s.lastCreated = p
	s.products = append(s.products, p)
	return p, nil
}

func (s *stubStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.listCalls++
	return s.products, nil
}

func (s *stubStore) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubStore) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return p, nil
}

func (s *stubStore) DeleteProduct(ctx context.Context, id string) error {
	s.deleteCalled = true
	return nil
}

func newCachedService(t *testing.T) (*catalog.Service, *stubStore) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &stubStore{}
	svc := &catalog.Service{
		Categories: store,
		Products:   store,
		Cache:      catalog.NewCache(rdb, time.Minute),
	}
	return svc, store
}

func TestListProductsCached(t *testing.T) {
	svc, store := newCachedService(t)
	ctx := context.Background()
	if _, err := svc.CreateProduct(ctx, "Espresso", 2000, "11111111-1111-4111-8111-111111111111"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ListProducts(ctx); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if _, err := svc.ListProducts(ctx); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected 1 store call, got %d", store.listCalls)
	}
}

func TestCreateProductInvalidatesListCache(t *testing.T) {
	svc, store := newCachedService(t)
	ctx := context.Background()
	if _, err := svc.ListProducts(ctx); err != nil {
		t.Fatalf("warm list: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, "Latte", 2500, "11111111-1111-4111-8111-111111111111"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ListProducts(ctx); err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("expected cache invalidation to force 2 store calls, got %d", store.listCalls)
	}
}

func TestCreateProductRejectsInvalid(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	if _, err := svc.CreateProduct(ctx, "  ", 2000, "c1"); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, "Espresso", 0, "c1"); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero price, got %v", err)
	}
}
