package settings

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	rates Rates
}

func (m *memStore) Rates(ctx context.Context) (Rates, error) { return m.rates, nil }

func (m *memStore) UpdateServiceBps(ctx context.Context, bps int) (Rates, error) {
	m.rates.ServiceBps = bps
	return m.rates, nil
}

func (m *memStore) UpdateTaxBps(ctx context.Context, bps int) (Rates, error) {
	m.rates.TaxBps = bps
	return m.rates, nil
}

func TestUpdateServiceRateConvertsToBps(t *testing.T) {
	svc := &Service{Store: &memStore{rates: Rates{ServiceBps: 1000, TaxBps: 1500}}}
	rates, err := svc.UpdateServiceRate(context.Background(), 0.125)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rates.ServiceBps != 1250 {
		t.Fatalf("expected 1250 bps, got %d", rates.ServiceBps)
	}
}

func TestUpdateRejectsOutOfRange(t *testing.T) {
	svc := &Service{Store: &memStore{}}
	if _, err := svc.UpdateTaxRate(context.Background(), 1.5); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := svc.UpdateTaxRate(context.Background(), -0.1); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestBoundaryRatesAccepted(t *testing.T) {
	svc := &Service{Store: &memStore{}}
	if _, err := svc.UpdateTaxRate(context.Background(), 0); err != nil {
		t.Fatalf("rate 0 rejected: %v", err)
	}
	rates, err := svc.UpdateTaxRate(context.Background(), 1)
	if err != nil {
		t.Fatalf("rate 1 rejected: %v", err)
	}
	if rates.TaxBps != 10000 {
		t.Fatalf("expected 10000 bps, got %d", rates.TaxBps)
	}
}
