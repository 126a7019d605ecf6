package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Item is a cart line. Product is captured by value when the line is created.
type Item struct {
	ID       string          `json:"id"`
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Summary aggregates a cart's lines.
type Summary struct {
	Lines     int             `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Totals computes line count, unit count and subtotal. Prices are summed as
// decimals rounded to cents so repeated additions do not drift.
func Totals(items []Item) Summary {
	s := Summary{Lines: len(items), Subtotal: decimal.Zero}
	for _, it := range items {
		s.ItemCount += it.Quantity
		line := decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		s.Subtotal = s.Subtotal.Add(line)
	}
	s.Subtotal = s.Subtotal.Round(2)
	return s
}

// IndexOf returns the position of the line holding productID, or -1.
func IndexOf(items []Item, productID string) int {
	for i := range items {
		if items[i].Product.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add returns items with qty more of p. A line already holding p grows,
// otherwise a new line with id is appended. items is not modified.
func Add(items []Item, p product.Product, qty int, id string) []Item {
	out := slices.Clone(items)
	if i := IndexOf(out, p.ProductID); i >= 0 {
		out[i].Quantity += qty
		return out
	}
	return append(out, Item{ID: id, Product: p, Quantity: qty})
}

// Remove returns items without the line holding productID.
func Remove(items []Item, productID string) []Item {
	return slices.DeleteFunc(slices.Clone(items), func(it Item) bool {
		return it.Product.ProductID == productID
	})
}

// SetQuantity returns items with the line holding productID set to qty.
// Unknown products leave the cart unchanged. Zero is stored as is: callers
// that mean removal call Remove.
func SetQuantity(items []Item, productID string, qty int) []Item {
	i := IndexOf(items, productID)
	if i < 0 {
		return items
	}
	out := slices.Clone(items)
	out[i].Quantity = qty
	return out
}
