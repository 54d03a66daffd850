package models

import "github.com/shopspring/decimal"

// LineItem is a (product, quantity) pairing inside a Cart or an Order.
type LineItem interface {
	LineTotal() decimal.Decimal
	LineQuantity() int
}

// lineTotal prices a line against the product's current price. A line whose
// product has been deleted contributes nothing.
func lineTotal(p *Product, quantity int) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// SumLines returns the summed line totals and the summed quantities of items.
func SumLines[T LineItem](items []T) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.LineTotal())
		count += item.LineQuantity()
	}
	return total, count
}
