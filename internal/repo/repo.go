// Package repo holds the postgres persistence layer. Each repository
// implements the store interface its consuming service declares.
package repo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every store backed by the shared pool.
type Repositories struct {
	Categories *Categories
	Products   *Products
	Settings   *Settings
	Invoices   *Invoices
	Events     *Events
}

// New wires all repositories against one pgx pool.
func New(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Categories: &Categories{pool: pool},
		Products:   &Products{pool: pool},
		Settings:   &Settings{pool: pool},
		Invoices:   &Invoices{pool: pool},
		Events:     &Events{pool: pool},
	}
}
