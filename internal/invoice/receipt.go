package invoice

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

const receiptWidth = 40

// FormatReceipt renders an invoice as a plain-text till receipt: header,
// one block per line item, then the totals section. Amounts are printed
// with two decimal places from their minor-unit values.
func FormatReceipt(inv Invoice) string {
	var b strings.Builder
	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	b.WriteString(rule + "\n")
	b.WriteString("         CASHIER POS RECEIPT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Invoice Number: %s\n", inv.Number)
	fmt.Fprintf(&b, "Date: %s\n", inv.CreatedAt.Format("2006-01-02 15:04:05"))
	if inv.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", inv.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString(thin + "\n")
	b.WriteString("ITEMS\n")
	b.WriteString(thin + "\n")
	for _, it := range inv.Items {
		b.WriteString(it.ProductName + "\n")
		fmt.Fprintf(&b, "  %d x %s = %s\n", it.Qty, formatMoney(it.UnitPrice), formatMoney(it.LineTotal))
	}
	b.WriteString(thin + "\n")
	b.WriteString("TOTALS\n")
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "%-16s %s\n", "Subtotal:", formatMoney(inv.Subtotal))
	fmt.Fprintf(&b, "%-16s %s\n", "Service Charge:", formatMoney(inv.ServiceCharge))
	fmt.Fprintf(&b, "%-16s %s\n", "Tax:", formatMoney(inv.Tax))
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "%-16s %s\n", "TOTAL:", formatMoney(inv.Total))
	b.WriteString(rule + "\n")
	b.WriteString("       Thank you for your visit!\n")
	b.WriteString(rule)
	return b.String()
}

func formatMoney(m pricing.Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}
