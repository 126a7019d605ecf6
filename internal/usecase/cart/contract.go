package cart

import (
	"context"

	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Response is the envelope every cart API call returns. Items, when set,
// is the authoritative cart after the call.
type Response struct {
	Success bool        `json:"success"`
	Items   []cart.Item `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// API is the cart persistence boundary for one shopper session.
type API interface {
	GetCart(ctx context.Context) (Response, error)
	AddProductToCart(ctx context.Context, p product.Product, qty int) (Response, error)
	RemoveFromCart(ctx context.Context, productID string) (Response, error)
	UpdateCartItem(ctx context.Context, productID string, qty int) (Response, error)
	ClearCart(ctx context.Context) (Response, error)
}

// Dispatcher receives the store actions the service emits.
type Dispatcher interface {
	Dispatch(a store.Action) store.State
}
