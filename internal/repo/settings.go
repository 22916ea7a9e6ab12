package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/settings"
)

// Settings persists the rate configuration as a single row.
type Settings struct {
	pool *pgxpool.Pool
}

// EnsureDefaults seeds the singleton row when it does not exist yet. Called
// once at startup with the configured default rates.
func (r *Settings) EnsureDefaults(ctx context.Context, serviceBps, taxBps int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (id, service_bps, tax_bps) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		serviceBps, taxBps,
	)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

func (r *Settings) Rates(ctx context.Context) (settings.Rates, error) {
	var rates settings.Rates
	err := r.pool.QueryRow(ctx,
		`SELECT service_bps, tax_bps FROM settings WHERE id = 1`,
	).Scan(&rates.ServiceBps, &rates.TaxBps)
	if err != nil {
		return settings.Rates{}, fmt.Errorf("read settings: %w", err)
	}
	return rates, nil
}

func (r *Settings) UpdateServiceBps(ctx context.Context, bps int) (settings.Rates, error) {
	var rates settings.Rates
	err := r.pool.QueryRow(ctx,
		`UPDATE settings SET service_bps = $1, updated_at = now() WHERE id = 1
		 RETURNING service_bps, tax_bps`,
		bps,
	).Scan(&rates.ServiceBps, &rates.TaxBps)
	if err != nil {
		return settings.Rates{}, fmt.Errorf("update service rate: %w", err)
	}
	return rates, nil
}

func (r *Settings) UpdateTaxBps(ctx context.Context, bps int) (settings.Rates, error) {
	var rates settings.Rates
	err := r.pool.QueryRow(ctx,
		`UPDATE settings SET tax_bps = $1, updated_at = now() WHERE id = 1
		 RETURNING service_bps, tax_bps`,
		bps,
	).Scan(&rates.ServiceBps, &rates.TaxBps)
	if err != nil {
		return settings.Rates{}, fmt.Errorf("update tax rate: %w", err)
	}
	return rates, nil
}
