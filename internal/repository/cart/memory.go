package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	domcart "github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
)

// Memory keeps carts in process memory, one per session id.
type Memory struct {
	mu    sync.Mutex
	carts map[string][]domcart.Item
	newID func() string
}

// NewMemory creates an empty in-memory cart backend.
func NewMemory() *Memory {
	return &Memory{carts: make(map[string][]domcart.Item), newID: uuid.NewString}
}

// ForSession returns the cart API of one session.
func (m *Memory) ForSession(id string) cartuc.API {
	return &memorySession{m: m, id: id}
}

// update applies fn to the session's cart under the lock and returns the result.
func (m *Memory) update(id string, fn func([]domcart.Item) []domcart.Item) []domcart.Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := fn(m.carts[id])
	if len(next) == 0 {
		delete(m.carts, id)
		return []domcart.Item{}
	}
	m.carts[id] = next
	return slices.Clone(next)
}

type memorySession struct {
	m  *Memory
	id string
}

func (s *memorySession) GetCart(ctx context.Context) (cartuc.Response, error) {
	if err := ctx.Err(); err != nil {
		return cartuc.Response{}, err //nolint:wrapcheck // context error as is
	}
	return ok(s.m.update(s.id, identity)), nil
}

func (s *memorySession) AddProductToCart(ctx context.Context, p product.Product, qty int) (cartuc.Response, error) {
	if err := ctx.Err(); err != nil {
		return cartuc.Response{}, err //nolint:wrapcheck // context error as is
	}
	if resp, bad := invalidQuantity(qty); bad {
		return resp, nil
	}
	id := s.m.newID()
	return ok(s.m.update(s.id, func(items []domcart.Item) []domcart.Item {
		return domcart.Add(items, p, qty, id)
	})), nil
}

func (s *memorySession) RemoveFromCart(ctx context.Context, productID string) (cartuc.Response, error) {
	if err := ctx.Err(); err != nil {
		return cartuc.Response{}, err //nolint:wrapcheck // context error as is
	}
	return ok(s.m.update(s.id, func(items []domcart.Item) []domcart.Item {
		return domcart.Remove(items, productID)
	})), nil
}

func (s *memorySession) UpdateCartItem(ctx context.Context, productID string, qty int) (cartuc.Response, error) {
	if err := ctx.Err(); err != nil {
		return cartuc.Response{}, err //nolint:wrapcheck // context error as is
	}
	var found bool
	items := s.m.update(s.id, func(items []domcart.Item) []domcart.Item {
		found = domcart.IndexOf(items, productID) >= 0
		return applyQuantity(items, productID, qty)
	})
	if !found {
		return notInCart(productID), nil
	}
	return ok(items), nil
}

func (s *memorySession) ClearCart(ctx context.Context) (cartuc.Response, error) {
	if err := ctx.Err(); err != nil {
		return cartuc.Response{}, err //nolint:wrapcheck // context error as is
	}
	return ok(s.m.update(s.id, func([]domcart.Item) []domcart.Item { return nil })), nil
}
