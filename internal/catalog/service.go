package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound indicates the referenced category or product does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ErrInvalidInput is returned for malformed catalog payloads.
var ErrInvalidInput = errors.New("catalog: invalid input")

// CategoryStore is the persistence contract for categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ProductStore is the persistence contract for products.
type ProductStore interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Service orchestrates catalog CRUD and the read cache.
type Service struct {
	Categories CategoryStore
	Products   ProductStore
	Cache      *Cache
}

// CreateCategory validates and stores a category.
func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrInvalidInput
	}
	cat, err := s.Categories.CreateCategory(ctx, name)
	if err != nil {
		return Category{}, err
	}
	s.Cache.Invalidate(ctx, categoryListKey)
	return cat, nil
}

// ListCategories returns all categories, served from cache when warm.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if ok, _ := s.Cache.GetJSON(ctx, categoryListKey, &cached); ok {
		return cached, nil
	}
	cats, err := s.Categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, categoryListKey, cats)
	return cats, nil
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	return s.Categories.GetCategory(ctx, id)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.Categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, categoryListKey, productListKey)
	return nil
}

// CreateProduct validates and stores a product.
func (s *Service) CreateProduct(ctx context.Context, name string, price int64, categoryID string) (Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return Product{}, ErrInvalidInput
	}
	p, err := s.Products.CreateProduct(ctx, Product{Name: name, Price: price, CategoryID: categoryID})
	if err != nil {
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, productListKey)
	return p, nil
}

// ListProducts returns all products, served from cache when warm.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	var cached []Product
	if ok, _ := s.Cache.GetJSON(ctx, productListKey, &cached); ok {
		return cached, nil
	}
	products, err := s.Products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, productListKey, products)
	return products, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	var cached Product
	key := productKeyPrefix + id
	if ok, _ := s.Cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, p)
	return p, nil
}

// UpdateProduct validates and stores product changes. Existing cart and
// invoice lines keep their snapshots; only future lines see the new price.
func (s *Service) UpdateProduct(ctx context.Context, id, name string, price int64, categoryID string) (Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return Product{}, ErrInvalidInput
	}
	p, err := s.Products.UpdateProduct(ctx, Product{ID: id, Name: name, Price: price, CategoryID: categoryID})
	if err != nil {
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, productListKey, productKeyPrefix+id)
	return p, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, productListKey, productKeyPrefix+id)
	return nil
}
