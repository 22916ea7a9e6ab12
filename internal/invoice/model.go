package invoice

import (
	"fmt"
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// PaymentMethod is how a completed invoice was settled.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether the method is one of the supported values.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// LineItem is one product entry on an invoice. ProductName and UnitPrice are
// snapshots taken when the line was first added; catalog edits never reach
// existing lines.
type LineItem struct {
	ID          string        `json:"id"`
	InvoiceID   string        `json:"invoiceId"`
	ProductID   string        `json:"productId"`
	ProductName string        `json:"productName"`
	UnitPrice   pricing.Money `json:"unitPrice"`
	Qty         int           `json:"qty"`
	LineTotal   pricing.Money `json:"lineTotal"`
}

// Invoice is a priced bill with two lifecycle states: open while
// CompletedAt is nil, completed and frozen once it is set. There is no
// transition back to open.
type Invoice struct {
	ID            string        `json:"id"`
	Number        string        `json:"invoiceNumber"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Items         []LineItem    `json:"items"`
	Subtotal      pricing.Money `json:"subtotal"`
	ServiceCharge pricing.Money `json:"serviceCharge"`
	Tax           pricing.Money `json:"tax"`
	Total         pricing.Money `json:"total"`

	// Version guards read-modify-write cycles: totals updates and
	// completion are compare-and-swap on this value.
	Version int64 `json:"-"`
}

// Completed reports whether the invoice has reached its terminal state.
func (inv *Invoice) Completed() bool {
	return inv.CompletedAt != nil
}

// FindItem returns the line with the given id, or nil.
func (inv *Invoice) FindItem(itemID string) *LineItem {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			return &inv.Items[i]
		}
	}
	return nil
}

// FindItemByProduct returns the line for the given product, or nil.
func (inv *Invoice) FindItemByProduct(productID string) *LineItem {
	for i := range inv.Items {
		if inv.Items[i].ProductID == productID {
			return &inv.Items[i]
		}
	}
	return nil
}

// NumberFor builds a date-stamped invoice number. Uniqueness rests on the
// millisecond clock, which is plenty for a single till.
func NumberFor(now time.Time) string {
	return fmt.Sprintf("INV-%s-%d", now.Format("20060102"), now.UnixMilli())
}
