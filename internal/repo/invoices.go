package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/invoice"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Invoices persists invoice headers and line items. Mutations on the header
// carry a version check so concurrent writers surface invoice.ErrConflict
// instead of silently overwriting each other.
type Invoices struct {
	pool *pgxpool.Pool
}

func (r *Invoices) Create(ctx context.Context, inv invoice.Invoice) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO invoices (id, number, created_at, subtotal, service_charge, tax, total, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.Number, inv.CreatedAt, inv.Subtotal, inv.ServiceCharge, inv.Tax, inv.Total, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *Invoices) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	inv, err := r.scanHeader(r.pool.QueryRow(ctx,
		`SELECT id, number, created_at, completed_at, payment_method,
		        subtotal, service_charge, tax, total, version
		 FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return invoice.Invoice{}, fmt.Errorf("invoice %s: %w", id, invoice.ErrNotFound)
	}
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	inv.Items, err = r.listItems(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	return inv, nil
}

func (r *Invoices) Complete(ctx context.Context, id string, version int64, completedAt time.Time, method invoice.PaymentMethod) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices
		 SET completed_at = $3, payment_method = $4, version = version + 1
		 WHERE id = $1 AND version = $2 AND completed_at IS NULL`,
		id, version, completedAt, string(method),
	)
	if err != nil {
		return fmt.Errorf("complete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// AddItem inserts a line and writes the new totals in one transaction.
func (r *Invoices) AddItem(ctx context.Context, item invoice.LineItem, version int64, sum pricing.Summary) error {
	return r.mutateItems(ctx, item.InvoiceID, version, sum, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO invoice_items (id, invoice_id, product_id, product_name, unit_price, qty, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.InvoiceID, item.ProductID, item.ProductName, item.UnitPrice, item.Qty, item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
		return nil
	})
}

// UpdateItemQty rewrites one line's quantity and the invoice totals in one
// transaction.
func (r *Invoices) UpdateItemQty(ctx context.Context, invoiceID, itemID string, qty int, lineTotal pricing.Money, version int64, sum pricing.Summary) error {
	return r.mutateItems(ctx, invoiceID, version, sum, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE invoice_items SET qty = $3, line_total = $4
			 WHERE invoice_id = $1 AND id = $2`,
			invoiceID, itemID, qty, lineTotal,
		)
		if err != nil {
			return fmt.Errorf("update invoice item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("line item %s: %w", itemID, invoice.ErrNotFound)
		}
		return nil
	})
}

// DeleteItem removes a line and writes the new totals in one transaction.
func (r *Invoices) DeleteItem(ctx context.Context, invoiceID, itemID string, version int64, sum pricing.Summary) error {
	return r.mutateItems(ctx, invoiceID, version, sum, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM invoice_items WHERE invoice_id = $1 AND id = $2`,
			invoiceID, itemID,
		)
		if err != nil {
			return fmt.Errorf("delete invoice item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("line item %s: %w", itemID, invoice.ErrNotFound)
		}
		return nil
	})
}

// errStaleVersion signals a zero-row guarded totals update inside a
// transaction; mutateItems maps it via missOrConflict after rollback.
var errStaleVersion = errors.New("stale invoice version")

// mutateItems runs the line mutation and the guarded totals/version update
// in a single transaction so an invoice is never persisted with lines that
// disagree with its monetary fields.
func (r *Invoices) mutateItems(ctx context.Context, invoiceID string, version int64, sum pricing.Summary, mutate func(pgx.Tx) error) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := mutate(tx); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE invoices
			 SET subtotal = $3, service_charge = $4, tax = $5, total = $6, version = version + 1
			 WHERE id = $1 AND version = $2`,
			invoiceID, version, sum.Subtotal, sum.ServiceCharge, sum.Tax, sum.Total,
		)
		if err != nil {
			return fmt.Errorf("update invoice totals: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return errStaleVersion
		}
		return nil
	})
	if errors.Is(err, errStaleVersion) {
		return r.missOrConflict(ctx, invoiceID)
	}
	return err
}

func (r *Invoices) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]invoice.Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, created_at, completed_at, payment_method,
		        subtotal, service_charge, tax, total, version
		 FROM invoices
		 WHERE completed_at IS NOT NULL AND completed_at BETWEEN $1 AND $2
		 ORDER BY completed_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed invoices: %w", err)
	}
	defer rows.Close()

	out := []invoice.Invoice{}
	for rows.Next() {
		inv, err := r.scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items, err = r.listItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Invoices) listItems(ctx context.Context, invoiceID string) ([]invoice.LineItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_id, product_id, product_name, unit_price, qty, line_total
		 FROM invoice_items WHERE invoice_id = $1 ORDER BY position`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	items := []invoice.LineItem{}
	for rows.Next() {
		var it invoice.LineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Qty, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Invoices) scanHeader(row pgx.Row) (invoice.Invoice, error) {
	var (
		inv    invoice.Invoice
		method *string
	)
	err := row.Scan(&inv.ID, &inv.Number, &inv.CreatedAt, &inv.CompletedAt, &method,
		&inv.Subtotal, &inv.ServiceCharge, &inv.Tax, &inv.Total, &inv.Version)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if method != nil {
		inv.PaymentMethod = invoice.PaymentMethod(*method)
	}
	return inv, nil
}

// missOrConflict disambiguates a zero-row guarded update: the invoice either
// does not exist or another writer moved its version forward.
func (r *Invoices) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	if !exists {
		return fmt.Errorf("invoice %s: %w", id, invoice.ErrNotFound)
	}
	return invoice.ErrConflict
}
