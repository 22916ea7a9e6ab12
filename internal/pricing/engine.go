package pricing

import "errors"

// ErrInvalidInput is returned when a line carries a non-positive price or quantity.
var ErrInvalidInput = errors.New("pricing: invalid input")

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates the computed pricing components of an invoice.
type Summary struct {
	Subtotal      Money
	ServiceCharge Money
	Tax           Money
	Total         Money
}

// LineTotal returns unitPrice multiplied by quantity, validating both inputs.
func LineTotal(unitPrice Money, qty int) (Money, error) {
	if unitPrice <= 0 {
		return 0, ErrInvalidInput
	}
	if qty < 1 {
		return 0, ErrInvalidInput
	}
	return Money(qty) * unitPrice, nil
}

// Subtotal sums line totals over all items. An empty slice yields zero.
// Lines with non-positive quantity or price are skipped rather than rejected;
// callers validate lines at the point of entry.
func Subtotal(items []Item) Money {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	return subtotal
}

// ServiceCharge applies the service rate (basis points) to the subtotal.
func ServiceCharge(subtotal Money, serviceBps int) Money {
	if subtotal <= 0 || serviceBps <= 0 {
		return 0
	}
	return (subtotal * Money(serviceBps)) / 10000
}

// Tax applies the tax rate (basis points) to the taxable base. The base is
// subtotal plus service charge: tax is charged after the service charge has
// been added.
func Tax(subtotal, serviceCharge Money, taxBps int) Money {
	base := subtotal + serviceCharge
	if base <= 0 || taxBps <= 0 {
		return 0
	}
	return (base * Money(taxBps)) / 10000
}

// Total is the sum of subtotal, service charge, and tax.
func Total(subtotal, serviceCharge, tax Money) Money {
	return subtotal + serviceCharge + tax
}

// Compute calculates the full summary for the given items and rates.
func Compute(items []Item, serviceBps, taxBps int) Summary {
	subtotal := Subtotal(items)
	service := ServiceCharge(subtotal, serviceBps)
	tax := Tax(subtotal, service, taxBps)
	return Summary{
		Subtotal:      subtotal,
		ServiceCharge: service,
		Tax:           tax,
		Total:         Total(subtotal, service, tax),
	}
}
