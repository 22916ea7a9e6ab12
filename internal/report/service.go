// Package report aggregates completed invoices into sales summaries.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-kasir/internal/invoice"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

var ErrInvalidDate = errors.New("invalid date")

// InvoiceSource lists completed invoices inside a time window.
type InvoiceSource interface {
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]invoice.Invoice, error)
}

// DailyReport is the aggregate for one business day. Empty days report
// zeroes rather than an error.
type DailyReport struct {
	Date                string            `json:"date"`
	InvoiceCount        int               `json:"invoiceCount"`
	TotalSales          pricing.Money     `json:"totalSales"`
	TotalServiceCharges pricing.Money     `json:"totalServiceCharges"`
	TotalTaxes          pricing.Money     `json:"totalTaxes"`
	TotalRevenue        pricing.Money     `json:"totalRevenue"`
	Invoices            []invoice.Invoice `json:"invoices"`
}

// Service computes reports directly from the store on every request.
// Reports cover completed invoices only; open invoices never count.
type Service struct {
	Invoices InvoiceSource
	Location *time.Location
}

func (s *Service) location() *time.Location {
	if s != nil && s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Daily aggregates all invoices completed on the given calendar day,
// bounded by local midnight on both ends.
func (s *Service) Daily(ctx context.Context, date string) (DailyReport, error) {
	if s == nil || s.Invoices == nil {
		return DailyReport{}, errors.New("report service not configured")
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.location())
	if err != nil {
		return DailyReport{}, fmt.Errorf("%w: want YYYY-MM-DD, got %q", ErrInvalidDate, date)
	}
	from := day
	to := day.AddDate(0, 0, 1).Add(-time.Millisecond)

	invoices, err := s.Invoices.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return DailyReport{}, fmt.Errorf("list completed invoices: %w", err)
	}
	if obs.ReportRequestsTotal != nil {
		obs.ReportRequestsTotal.Inc()
	}

	rep := DailyReport{Date: date, Invoices: invoices}
	if rep.Invoices == nil {
		rep.Invoices = []invoice.Invoice{}
	}
	for i := range invoices {
		rep.InvoiceCount++
		rep.TotalSales += invoices[i].Subtotal
		rep.TotalServiceCharges += invoices[i].ServiceCharge
		rep.TotalTaxes += invoices[i].Tax
		rep.TotalRevenue += invoices[i].Total
	}
	return rep, nil
}
