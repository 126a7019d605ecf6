package cart

import (
	"fmt"

	domcart "github.com/kailas-cloud/shopfront/internal/domain/cart"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
)

// Rejections are reported in the envelope, not as Go errors, the way a
// remote cart API would answer.

func ok(items []domcart.Item) cartuc.Response {
	if items == nil {
		items = []domcart.Item{}
	}
	return cartuc.Response{Success: true, Items: items}
}

func invalidQuantity(qty int) (cartuc.Response, bool) {
	if qty > 0 {
		return cartuc.Response{}, false
	}
	return cartuc.Response{Message: fmt.Sprintf("quantity must be positive, got %d", qty)}, true
}

func notInCart(productID string) cartuc.Response {
	return cartuc.Response{Message: fmt.Sprintf("product %q is not in the cart", productID)}
}

func identity(items []domcart.Item) []domcart.Item { return items }

// applyQuantity sets a line's quantity; zero or less removes the line.
func applyQuantity(items []domcart.Item, productID string, qty int) []domcart.Item {
	if qty <= 0 {
		return domcart.Remove(items, productID)
	}
	return domcart.SetQuantity(items, productID, qty)
}
