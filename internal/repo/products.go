package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/cart"
	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/invoice"
)

// Products persists catalog products and serves the sale-time lookup used
// when snapshotting a product onto an invoice line.
type Products struct {
	pool *pgxpool.Pool
}

func (r *Products) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var out catalog.Product
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, name, price, category_id) VALUES ($1, $2, $3, $4)
		 RETURNING id, name, price, category_id, created_at, updated_at`,
		uuid.NewString(), p.Name, p.Price, p.CategoryID,
	).Scan(&out.ID, &out.Name, &out.Price, &out.CategoryID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return out, nil
}

func (r *Products) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, category_id, created_at, updated_at
		 FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Products) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price, category_id, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, fmt.Errorf("product %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Products) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var out catalog.Product
	err := r.pool.QueryRow(ctx,
		`UPDATE products SET name = $2, price = $3, category_id = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, price, category_id, created_at, updated_at`,
		p.ID, p.Name, p.Price, p.CategoryID,
	).Scan(&out.ID, &out.Name, &out.Price, &out.CategoryID, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, fmt.Errorf("product %s: %w", p.ID, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	return out, nil
}

func (r *Products) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// GetForSale resolves a product for invoicing. The missing-product error is
// the invoice sentinel so the invoice service can map it without importing
// catalog internals.
func (r *Products) GetForSale(ctx context.Context, productID string) (cart.ProductRef, error) {
	var ref cart.ProductRef
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price FROM products WHERE id = $1`, productID,
	).Scan(&ref.ID, &ref.Name, &ref.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.ProductRef{}, fmt.Errorf("product %s: %w", productID, invoice.ErrNotFound)
	}
	if err != nil {
		return cart.ProductRef{}, fmt.Errorf("get product for sale: %w", err)
	}
	return ref, nil
}
