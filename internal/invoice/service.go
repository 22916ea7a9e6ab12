package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-kasir/internal/cart"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/settings"
)

var (
	// ErrNotFound marks a missing invoice, line item or product.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a rejected argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompleted marks a mutation against a completed invoice.
	ErrCompleted = errors.New("invoice already completed")
	// ErrEmpty marks completion of an invoice without items.
	ErrEmpty = errors.New("invoice has no items")
	// ErrConflict marks a lost optimistic-concurrency race.
	ErrConflict = errors.New("concurrent modification")
)

// Store is the persistence contract for invoices. The item-mutation methods
// take the expected header version plus the recomputed totals: the store
// must apply the line change and all four monetary fields in one atomic
// write, or apply nothing and surface ErrConflict on a stale version.
type Store interface {
	Create(ctx context.Context, inv Invoice) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	Complete(ctx context.Context, id string, version int64, completedAt time.Time, method PaymentMethod) error
	AddItem(ctx context.Context, item LineItem, version int64, sum pricing.Summary) error
	UpdateItemQty(ctx context.Context, invoiceID, itemID string, qty int, lineTotal pricing.Money, version int64, sum pricing.Summary) error
	DeleteItem(ctx context.Context, invoiceID, itemID string, version int64, sum pricing.Summary) error
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]Invoice, error)
}

// ProductLookup resolves a product for sale, snapshotting name and price.
type ProductLookup interface {
	GetForSale(ctx context.Context, productID string) (cart.ProductRef, error)
}

// RateSource supplies the current pricing rates. It is read exactly once per
// totals calculation so one recalculation never mixes two rate versions.
type RateSource interface {
	Rates(ctx context.Context) (settings.Rates, error)
}

// Service implements the invoice lifecycle. Every mutating operation
// re-reads the invoice from the store, prices the projected line set, and
// persists the line change together with all four monetary fields; a failure
// anywhere leaves the stored invoice exactly as it was.
type Service struct {
	Invoices Store
	Products ProductLookup
	Settings RateSource
	Events   *events.Bus
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a new empty invoice.
func (s *Service) Create(ctx context.Context) (Invoice, error) {
	if s == nil || s.Invoices == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	now := s.now()
	inv := Invoice{
		ID:        uuid.NewString(),
		Number:    NumberFor(now),
		CreatedAt: now,
		Items:     []LineItem{},
		Version:   1,
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		return Invoice{}, err
	}
	if obs.InvoicesCreatedTotal != nil {
		obs.InvoicesCreatedTotal.Inc()
	}
	s.emit(ctx, events.TopicInvoiceCreated, inv.ID, map[string]any{
		"invoiceNumber": inv.Number,
	})
	return inv, nil
}

// Get loads an invoice with its lines.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	if s == nil || s.Invoices == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	return s.Invoices.GetByID(ctx, id)
}

// AddItem appends a product line or increments an existing one, snapshotting
// the product's name and price at this moment. The new totals are computed
// before anything is written so the line and the money land together.
func (s *Service) AddItem(ctx context.Context, invoiceID, productID string, qty int) (Invoice, error) {
	if s == nil || s.Invoices == nil || s.Products == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	if qty < 1 {
		return Invoice{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Completed() {
		return Invoice{}, ErrCompleted
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return Invoice{}, err
	}

	if existing := inv.FindItemByProduct(productID); existing != nil {
		newQty := existing.Qty + qty
		lineTotal, err := pricing.LineTotal(existing.UnitPrice, newQty)
		if err != nil {
			return Invoice{}, err
		}
		sum := projectedSummary(withQty(inv.Items, existing.ID, newQty), rates)
		if err := s.Invoices.UpdateItemQty(ctx, inv.ID, existing.ID, newQty, lineTotal, inv.Version, sum); err != nil {
			countConflict(err)
			return Invoice{}, err
		}
		return s.Invoices.GetByID(ctx, inv.ID)
	}

	product, err := s.Products.GetForSale(ctx, productID)
	if err != nil {
		return Invoice{}, err
	}
	lineTotal, err := pricing.LineTotal(product.Price, qty)
	if err != nil {
		return Invoice{}, err
	}
	item := LineItem{
		ID:          uuid.NewString(),
		InvoiceID:   inv.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Qty:         qty,
		LineTotal:   lineTotal,
	}
	sum := projectedSummary(append(append([]LineItem{}, inv.Items...), item), rates)
	if err := s.Invoices.AddItem(ctx, item, inv.Version, sum); err != nil {
		countConflict(err)
		return Invoice{}, err
	}
	return s.Invoices.GetByID(ctx, inv.ID)
}

// UpdateItemQty sets the absolute quantity of a line. Non-positive
// quantities are rejected; removal is an explicit operation, not a side
// effect of a bad quantity.
func (s *Service) UpdateItemQty(ctx context.Context, invoiceID, itemID string, qty int) (Invoice, error) {
	if s == nil || s.Invoices == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	if qty < 1 {
		return Invoice{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Completed() {
		return Invoice{}, ErrCompleted
	}
	item := inv.FindItem(itemID)
	if item == nil {
		return Invoice{}, fmt.Errorf("line item %s: %w", itemID, ErrNotFound)
	}
	lineTotal, err := pricing.LineTotal(item.UnitPrice, qty)
	if err != nil {
		return Invoice{}, err
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return Invoice{}, err
	}
	sum := projectedSummary(withQty(inv.Items, item.ID, qty), rates)
	if err := s.Invoices.UpdateItemQty(ctx, inv.ID, item.ID, qty, lineTotal, inv.Version, sum); err != nil {
		countConflict(err)
		return Invoice{}, err
	}
	return s.Invoices.GetByID(ctx, inv.ID)
}

// RemoveItem deletes a line and reprices the remainder.
func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID string) (Invoice, error) {
	if s == nil || s.Invoices == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Completed() {
		return Invoice{}, ErrCompleted
	}
	if inv.FindItem(itemID) == nil {
		return Invoice{}, fmt.Errorf("line item %s: %w", itemID, ErrNotFound)
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return Invoice{}, err
	}
	sum := projectedSummary(without(inv.Items, itemID), rates)
	if err := s.Invoices.DeleteItem(ctx, inv.ID, itemID, inv.Version, sum); err != nil {
		countConflict(err)
		return Invoice{}, err
	}
	return s.Invoices.GetByID(ctx, inv.ID)
}

// Complete stamps completedAt and freezes the invoice. An empty payment
// method defaults to cash, matching the till's walk-up flow.
func (s *Service) Complete(ctx context.Context, invoiceID string, method PaymentMethod) (Invoice, error) {
	if s == nil || s.Invoices == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}
	if method == "" {
		method = PaymentCash
	}
	if !method.Valid() {
		return Invoice{}, fmt.Errorf("unknown payment method %q: %w", method, ErrInvalidInput)
	}
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Completed() {
		return Invoice{}, ErrCompleted
	}
	if len(inv.Items) == 0 {
		return Invoice{}, ErrEmpty
	}
	completedAt := s.now()
	if err := s.Invoices.Complete(ctx, inv.ID, inv.Version, completedAt, method); err != nil {
		countConflict(err)
		return Invoice{}, err
	}
	done, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if obs.InvoicesCompletedTotal != nil {
		obs.InvoicesCompletedTotal.WithLabelValues(string(method)).Inc()
	}
	if obs.InvoiceRevenueTotal != nil {
		obs.InvoiceRevenueTotal.Add(float64(done.Total))
	}
	s.emit(ctx, events.TopicInvoiceCompleted, done.ID, map[string]any{
		"invoiceNumber": done.Number,
		"total":         done.Total,
		"paymentMethod": string(method),
	})
	return done, nil
}

// Line is one requested purchase in a checkout or preview call.
type Line struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// BuildCart assembles a session cart from requested lines, merging repeated
// products and snapshotting name/price from the catalog.
func (s *Service) BuildCart(ctx context.Context, lines []Line) (*cart.Cart, error) {
	if s == nil || s.Products == nil {
		return nil, errors.New("invoice service not configured")
	}
	c := cart.New()
	for _, line := range lines {
		if line.Qty < 1 {
			return nil, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
		}
		product, err := s.Products.GetForSale(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		c.Add(product)
		if line.Qty > 1 {
			for _, it := range c.Items() {
				if it.ProductID == product.ID {
					c.ChangeQty(it.ID, line.Qty-1)
					break
				}
			}
		}
	}
	return c, nil
}

// Preview prices a set of lines without persisting anything.
func (s *Service) Preview(ctx context.Context, lines []Line) ([]cart.Item, pricing.Summary, error) {
	if s == nil || s.Settings == nil {
		return nil, pricing.Summary{}, errors.New("invoice service not configured")
	}
	c, err := s.BuildCart(ctx, lines)
	if err != nil {
		return nil, pricing.Summary{}, err
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return nil, pricing.Summary{}, err
	}
	return c.Items(), c.Summary(rates.ServiceBps, rates.TaxBps), nil
}

// Checkout creates an invoice from the requested lines and completes it in
// one flow: the walk-up sale where the cart never waits.
func (s *Service) Checkout(ctx context.Context, lines []Line, method PaymentMethod) (Invoice, error) {
	if len(lines) == 0 {
		return Invoice{}, fmt.Errorf("at least one line is required: %w", ErrInvalidInput)
	}
	c, err := s.BuildCart(ctx, lines)
	if err != nil {
		return Invoice{}, err
	}
	inv, err := s.Create(ctx)
	if err != nil {
		return Invoice{}, err
	}
	for _, it := range c.Items() {
		if _, err := s.AddItem(ctx, inv.ID, it.ProductID, it.Qty); err != nil {
			return Invoice{}, err
		}
	}
	return s.Complete(ctx, inv.ID, method)
}

// projectedSummary prices a line set at the supplied rates.
func projectedSummary(items []LineItem, rates settings.Rates) pricing.Summary {
	lines := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Qty, UnitPrice: it.UnitPrice})
	}
	return pricing.Compute(lines, rates.ServiceBps, rates.TaxBps)
}

// withQty copies the line set with one item's quantity replaced.
func withQty(items []LineItem, itemID string, qty int) []LineItem {
	out := append([]LineItem{}, items...)
	for i := range out {
		if out[i].ID == itemID {
			out[i].Qty = qty
			break
		}
	}
	return out
}

// without copies the line set minus one item.
func without(items []LineItem, itemID string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ID != itemID {
			out = append(out, it)
		}
	}
	return out
}

func countConflict(err error) {
	if errors.Is(err, ErrConflict) && obs.InvoiceMutationConflicts != nil {
		obs.InvoiceMutationConflicts.Inc()
	}
}

func (s *Service) emit(ctx context.Context, topic, aggregateID string, payload any) {
	if s.Events == nil {
		return
	}
	// Event emission is best effort; a failed notifier must not fail the sale.
	_, _ = s.Events.Emit(ctx, topic, aggregateID, payload)
}
