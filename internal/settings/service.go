// Package settings manages the process-wide service charge and tax rates.
// Rates are transported as decimal fractions in [0,1] and stored as basis
// points; every totals calculation reads the current value at calculation
// time, so there is no per-invoice rate pinning.
package settings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned when a rate falls outside [0,1].
var ErrInvalidRate = errors.New("rate must be between 0 and 1")

// Rates holds the configured pricing rates in basis points.
type Rates struct {
	ServiceBps int `json:"serviceBps"`
	TaxBps     int `json:"taxBps"`
}

// ServiceRate returns the service rate as a decimal fraction.
func (r Rates) ServiceRate() float64 { return float64(r.ServiceBps) / 10000 }

// TaxRate returns the tax rate as a decimal fraction.
func (r Rates) TaxRate() float64 { return float64(r.TaxBps) / 10000 }

// Store is the persistence contract for the settings singleton.
type Store interface {
	Rates(ctx context.Context) (Rates, error)
	UpdateServiceBps(ctx context.Context, bps int) (Rates, error)
	UpdateTaxBps(ctx context.Context, bps int) (Rates, error)
}

// Service exposes settings reads and administrative rate updates.
type Service struct {
	Store Store
}

// Get returns the current rates.
func (s *Service) Get(ctx context.Context) (Rates, error) {
	if s == nil || s.Store == nil {
		return Rates{}, errors.New("settings service not configured")
	}
	return s.Store.Rates(ctx)
}

// UpdateServiceRate sets the service rate from a decimal fraction.
func (s *Service) UpdateServiceRate(ctx context.Context, rate float64) (Rates, error) {
	if s == nil || s.Store == nil {
		return Rates{}, errors.New("settings service not configured")
	}
	bps, err := toBps(rate)
	if err != nil {
		return Rates{}, err
	}
	return s.Store.UpdateServiceBps(ctx, bps)
}

// UpdateTaxRate sets the tax rate from a decimal fraction.
func (s *Service) UpdateTaxRate(ctx context.Context, rate float64) (Rates, error) {
	if s == nil || s.Store == nil {
		return Rates{}, errors.New("settings service not configured")
	}
	bps, err := toBps(rate)
	if err != nil {
		return Rates{}, err
	}
	return s.Store.UpdateTaxBps(ctx, bps)
}

func toBps(rate float64) (int, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return int(math.Round(rate * 10000)), nil
}
