package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/catalog"
)

// Categories persists catalog categories.
type Categories struct {
	pool *pgxpool.Pool
}

func (r *Categories) CreateCategory(ctx context.Context, name string) (catalog.Category, error) {
	var c catalog.Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)
		 RETURNING id, name, created_at`,
		uuid.NewString(), name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return catalog.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *Categories) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Categories) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	var c catalog.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Category{}, fmt.Errorf("category %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Categories) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}
