package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

func TestFormatReceipt(t *testing.T) {
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	completed := created.Add(5 * time.Minute)
	inv := Invoice{
		Number:      "INV-20240315-1710498600000",
		CreatedAt:   created,
		CompletedAt: &completed,
		Items: []LineItem{
			{ProductName: "Espresso", UnitPrice: 2000, Qty: 2, LineTotal: 4000},
		},
		Subtotal:      4000,
		ServiceCharge: 400,
		Tax:           660,
		Total:         5060,
	}

	got := FormatReceipt(inv)
	for _, want := range []string{
		"CASHIER POS RECEIPT",
		"Invoice Number: INV-20240315-1710498600000",
		"Date: 2024-03-15 10:30:00",
		"Completed: 2024-03-15 10:35:00",
		"Espresso",
		"  2 x 20.00 = 40.00",
		"Subtotal:        40.00",
		"Service Charge:  4.00",
		"Tax:             6.60",
		"TOTAL:           50.60",
		"Thank you for your visit!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("receipt missing %q:\n%s", want, got)
		}
	}
}

func TestFormatReceiptOpenInvoiceOmitsCompleted(t *testing.T) {
	inv := Invoice{
		Number:    "INV-20240315-1710498600000",
		CreatedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Items:     []LineItem{},
	}
	got := FormatReceipt(inv)
	if strings.Contains(got, "Completed:") {
		t.Fatalf("open invoice must not print a completion line:\n%s", got)
	}
	if !strings.Contains(got, "TOTAL:           0.00") {
		t.Fatalf("expected zero total line:\n%s", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   pricing.Money
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{5060, "50.60"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.in); got != tc.want {
			t.Fatalf("formatMoney(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
