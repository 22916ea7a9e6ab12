package invoice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/noah-isme/backend-kasir/internal/cart"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/settings"
)

// memStore is an in-memory Store with the same version-check semantics as
// the postgres repository.
type memStore struct {
	invoices map[string]*Invoice
}

func newMemStore() *memStore {
	return &memStore{invoices: map[string]*Invoice{}}
}

func (m *memStore) Create(ctx context.Context, inv Invoice) error {
	cp := inv
	cp.Items = append([]LineItem{}, inv.Items...)
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	cp := *inv
	cp.Items = append([]LineItem{}, inv.Items...)
	return cp, nil
}

// guarded loads the invoice and enforces the version check before any part
// of a mutation is applied, mirroring the repository's transaction.
func (m *memStore) guarded(id string, version int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if inv.Version != version {
		return nil, ErrConflict
	}
	return inv, nil
}

func applyTotals(inv *Invoice, sum pricing.Summary) {
	inv.Subtotal = sum.Subtotal
	inv.ServiceCharge = sum.ServiceCharge
	inv.Tax = sum.Tax
	inv.Total = sum.Total
	inv.Version++
}

func (m *memStore) Complete(ctx context.Context, id string, version int64, completedAt time.Time, method PaymentMethod) error {
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if inv.Version != version {
		return ErrConflict
	}
	at := completedAt
	inv.CompletedAt = &at
	inv.PaymentMethod = method
	inv.Version++
	return nil
}

func (m *memStore) AddItem(ctx context.Context, item LineItem, version int64, sum pricing.Summary) error {
	inv, err := m.guarded(item.InvoiceID, version)
	if err != nil {
		return err
	}
	inv.Items = append(inv.Items, item)
	applyTotals(inv, sum)
	return nil
}

func (m *memStore) UpdateItemQty(ctx context.Context, invoiceID, itemID string, qty int, lineTotal pricing.Money, version int64, sum pricing.Summary) error {
	inv, err := m.guarded(invoiceID, version)
	if err != nil {
		return err
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items[i].Qty = qty
			inv.Items[i].LineTotal = lineTotal
			applyTotals(inv, sum)
			return nil
		}
	}
	return fmt.Errorf("line item %s: %w", itemID, ErrNotFound)
}

func (m *memStore) DeleteItem(ctx context.Context, invoiceID, itemID string, version int64, sum pricing.Summary) error {
	inv, err := m.guarded(invoiceID, version)
	if err != nil {
		return err
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			applyTotals(inv, sum)
			return nil
		}
	}
	return fmt.Errorf("line item %s: %w", itemID, ErrNotFound)
}

func (m *memStore) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.CompletedAt == nil {
			continue
		}
		if inv.CompletedAt.Before(from) || inv.CompletedAt.After(to) {
			continue
		}
		cp := *inv
		cp.Items = append([]LineItem{}, inv.Items...)
		out = append(out, cp)
	}
	return out, nil
}

type stubCatalog struct {
	products map[string]cart.ProductRef
}

func (s stubCatalog) GetForSale(ctx context.Context, productID string) (cart.ProductRef, error) {
	p, ok := s.products[productID]
	if !ok {
		return cart.ProductRef{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return p, nil
}

type stubRates struct {
	rates settings.Rates
	reads int
	err   error
}

func (s *stubRates) Rates(ctx context.Context) (settings.Rates, error) {
	s.reads++
	if s.err != nil {
		return settings.Rates{}, s.err
	}
	return s.rates, nil
}

func newTestService() (*Service, *memStore, *stubRates) {
	store := newMemStore()
	rates := &stubRates{rates: settings.Rates{ServiceBps: 1000, TaxBps: 1500}}
	svc := &Service{
		Invoices: store,
		Products: stubCatalog{products: map[string]cart.ProductRef{
			"p-espresso": {ID: "p-espresso", Name: "Espresso", Price: 2000},
			"p-latte":    {ID: "p-latte", Name: "Latte", Price: 2500},
		}},
		Settings: rates,
		Now:      func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) },
	}
	return svc, store, rates
}

func TestCreateOpensEmptyInvoice(t *testing.T) {
	svc, _, _ := newTestService()
	inv, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Completed() {
		t.Fatal("new invoice must be open")
	}
	if len(inv.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(inv.Items))
	}
	if inv.Subtotal != 0 || inv.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", inv)
	}
	if inv.Number != "INV-20240315-1710498600000" {
		t.Fatalf("unexpected invoice number %q", inv.Number)
	}
}

func TestAddItemSnapshotsAndRecalculates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)

	inv, err := svc.AddItem(ctx, inv.ID, "p-espresso", 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(inv.Items) != 1 || inv.Items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", inv.Items)
	}
	if inv.Items[0].ProductName != "Espresso" || inv.Items[0].UnitPrice != 2000 {
		t.Fatalf("missing snapshot: %+v", inv.Items[0])
	}
	// 40.00 subtotal, 10% service, 15% tax on 44.00.
	if inv.Subtotal != 4000 || inv.ServiceCharge != 400 || inv.Tax != 660 || inv.Total != 5060 {
		t.Fatalf("unexpected totals %+v", inv)
	}
}

func TestAddSameProductIncrementsLine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	if _, err := svc.AddItem(ctx, inv.ID, "p-espresso", 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	got, err := svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected single line, got %d", len(got.Items))
	}
	if got.Items[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", got.Items[0].Qty)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	if _, err := svc.AddItem(ctx, inv.ID, "p-missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddItemUnknownInvoice(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.AddItem(context.Background(), "nope", "p-espresso", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemQtyAbsolute(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 5)
	got, err := svc.UpdateItemQty(ctx, inv.ID, inv.Items[0].ID, 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Items[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", got.Items[0].Qty)
	}
	if got.Subtotal != 4000 {
		t.Fatalf("totals not recomputed: %+v", got)
	}
}

func TestUpdateItemQtyRejectsNonPositive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	if _, err := svc.UpdateItemQty(ctx, inv.ID, inv.Items[0].ID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for qty 0, got %v", err)
	}
	if _, err := svc.UpdateItemQty(ctx, inv.ID, inv.Items[0].ID, -3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative qty, got %v", err)
	}
	got, _ := svc.Get(ctx, inv.ID)
	if got.Items[0].Qty != 1 {
		t.Fatalf("rejected update must not change state: %+v", got.Items[0])
	}
}

func TestRemoveItemRecalculates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 2)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-latte", 1)
	got, err := svc.RemoveItem(ctx, inv.ID, inv.Items[1].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	if got.Subtotal != 4000 {
		t.Fatalf("totals not recomputed: %+v", got)
	}
}

func TestRemoveMissingItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	if _, err := svc.RemoveItem(ctx, inv.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteEmptyInvoiceFails(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	if _, err := svc.Complete(ctx, inv.ID, PaymentCash); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	got, _ := svc.Get(ctx, inv.ID)
	if got.Completed() {
		t.Fatal("failed completion must leave invoice open")
	}
}

func TestCompleteFreezesInvoice(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 2)
	done, err := svc.Complete(ctx, inv.ID, PaymentCard)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed() {
		t.Fatal("expected completed invoice")
	}
	if done.PaymentMethod != PaymentCard {
		t.Fatalf("expected card payment, got %q", done.PaymentMethod)
	}

	before, _ := svc.Get(ctx, inv.ID)
	if _, err := svc.AddItem(ctx, inv.ID, "p-latte", 1); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on add, got %v", err)
	}
	if _, err := svc.UpdateItemQty(ctx, inv.ID, before.Items[0].ID, 3); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on update, got %v", err)
	}
	if _, err := svc.RemoveItem(ctx, inv.ID, before.Items[0].ID); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on remove, got %v", err)
	}
	after, _ := svc.Get(ctx, inv.ID)
	if after.Total != before.Total || len(after.Items) != len(before.Items) {
		t.Fatalf("completed invoice mutated: before %+v after %+v", before, after)
	}
}

func TestCompleteTwiceFails(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	_, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	if _, err := svc.Complete(ctx, inv.ID, ""); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if _, err := svc.Complete(ctx, inv.ID, ""); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
}

func TestCompleteDefaultsToCash(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	_, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	done, err := svc.Complete(ctx, inv.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.PaymentMethod != PaymentCash {
		t.Fatalf("expected cash default, got %q", done.PaymentMethod)
	}
}

func TestCompleteRejectsUnknownMethod(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	_, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	if _, err := svc.Complete(ctx, inv.ID, "crypto"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRatesReadOncePerRecalculation(t *testing.T) {
	svc, _, rates := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	rates.reads = 0
	if _, err := svc.AddItem(ctx, inv.ID, "p-espresso", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if rates.reads != 1 {
		t.Fatalf("expected exactly one rate read per mutation, got %d", rates.reads)
	}
}

func TestRateChangeRepricesOpenInvoiceOnNextMutation(t *testing.T) {
	svc, _, rates := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 2)
	if inv.Tax != 660 {
		t.Fatalf("unexpected baseline tax %d", inv.Tax)
	}
	rates.rates.TaxBps = 0
	got, err := svc.UpdateItemQty(ctx, inv.ID, inv.Items[0].ID, 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Tax != 0 {
		t.Fatalf("expected reprice with new rate, got tax %d", got.Tax)
	}
}

func TestStaleVersionSurfacesConflict(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, _ = svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	itemID := inv.Items[0].ID
	// Another mutator bumps the version underneath us.
	store.invoices[inv.ID].Version++
	err := store.DeleteItem(ctx, inv.ID, itemID, inv.Version, pricing.Summary{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ := svc.Get(ctx, inv.ID)
	if len(got.Items) != 1 || got.Subtotal != inv.Subtotal {
		t.Fatalf("conflicted write must change nothing: %+v", got)
	}
}

func TestFailedRateReadLeavesInvoiceUntouched(t *testing.T) {
	svc, _, rates := newTestService()
	ctx := context.Background()
	inv, _ := svc.Create(ctx)
	inv, err := svc.AddItem(ctx, inv.ID, "p-espresso", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	rates.err = errors.New("settings unavailable")
	if _, err := svc.AddItem(ctx, inv.ID, "p-latte", 1); err == nil {
		t.Fatal("expected error when rates cannot be read")
	}
	if _, err := svc.UpdateItemQty(ctx, inv.ID, inv.Items[0].ID, 3); err == nil {
		t.Fatal("expected error when rates cannot be read")
	}
	if _, err := svc.RemoveItem(ctx, inv.ID, inv.Items[0].ID); err == nil {
		t.Fatal("expected error when rates cannot be read")
	}

	got, _ := svc.Get(ctx, inv.ID)
	if len(got.Items) != 1 || got.Items[0].Qty != 1 {
		t.Fatalf("failed mutation must not persist line changes: %+v", got.Items)
	}
	if got.Subtotal != 2000 || got.Total != inv.Total {
		t.Fatalf("failed mutation must not move totals: %+v", got)
	}
	if got.Version != inv.Version {
		t.Fatalf("failed mutation must not bump version: %d vs %d", got.Version, inv.Version)
	}
}

func TestCheckoutMergesLinesAndCompletes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	done, err := svc.Checkout(ctx, []Line{
		{ProductID: "p-espresso", Qty: 1},
		{ProductID: "p-latte", Qty: 1},
		{ProductID: "p-espresso", Qty: 1},
	}, PaymentCash)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !done.Completed() {
		t.Fatal("expected completed invoice")
	}
	if len(done.Items) != 2 {
		t.Fatalf("expected merged lines, got %d", len(done.Items))
	}
	espresso := done.FindItemByProduct("p-espresso")
	if espresso == nil || espresso.Qty != 2 {
		t.Fatalf("expected espresso qty 2, got %+v", espresso)
	}
	// subtotal 6500, service 650, tax on 7150 = 1072, total 8222.
	if done.Subtotal != 6500 || done.ServiceCharge != 650 || done.Tax != 1072 || done.Total != 8222 {
		t.Fatalf("unexpected totals %+v", done)
	}
}

func TestCheckoutEmptyLines(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Checkout(context.Background(), nil, PaymentCash); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	svc, store, _ := newTestService()
	items, sum, err := svc.Preview(context.Background(), []Line{{ProductID: "p-espresso", Qty: 2}})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(items) != 1 || items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", items)
	}
	if sum.Total != 5060 {
		t.Fatalf("unexpected total %d", sum.Total)
	}
	if len(store.invoices) != 0 {
		t.Fatalf("preview must not persist, found %d invoices", len(store.invoices))
	}
}
