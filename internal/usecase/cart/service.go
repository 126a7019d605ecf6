package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/metrics"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Service runs cart operations against the API and mirrors the outcome into
// the store. A failed call leaves the store's cart as it was and only
// records the error in the loading state.
type Service struct {
	api    API
	sink   Dispatcher
	logger *zap.Logger
}

// New creates a cart service.
func New(api API, sink Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, sink: sink, logger: logger}
}

// Load replaces the store's cart with the API's view.
func (s *Service) Load(ctx context.Context) ([]cart.Item, error) {
	return s.run(ctx, "get", func() (Response, error) {
		return s.api.GetCart(ctx)
	}, nil)
}

// Add adds qty units of p.
func (s *Service) Add(ctx context.Context, p product.Product, qty int) ([]cart.Item, error) {
	if p.ProductID == "" {
		return nil, fmt.Errorf("add to cart: empty product id: %w", domain.ErrValidation)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("add to cart: quantity %d: %w", qty, domain.ErrValidation)
	}
	return s.run(ctx, "add", func() (Response, error) {
		return s.api.AddProductToCart(ctx, p, qty)
	}, store.AddToCart{Product: p, Quantity: qty})
}

// Remove drops the line holding productID.
func (s *Service) Remove(ctx context.Context, productID string) ([]cart.Item, error) {
	if productID == "" {
		return nil, fmt.Errorf("remove from cart: empty product id: %w", domain.ErrValidation)
	}
	return s.run(ctx, "remove", func() (Response, error) {
		return s.api.RemoveFromCart(ctx, productID)
	}, store.RemoveFromCart{ProductID: productID})
}

// UpdateQuantity sets the quantity of a line. qty <= 0 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, qty int) ([]cart.Item, error) {
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}
	if productID == "" {
		return nil, fmt.Errorf("update cart item: empty product id: %w", domain.ErrValidation)
	}
	return s.run(ctx, "update", func() (Response, error) {
		return s.api.UpdateCartItem(ctx, productID, qty)
	}, store.UpdateCartQuantity{ProductID: productID, Quantity: qty})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) ([]cart.Item, error) {
	return s.run(ctx, "clear", func() (Response, error) {
		return s.api.ClearCart(ctx)
	}, store.ClearCart{})
}

// run calls the API and, on success, applies either the returned cart or
// the local action when the API returned no items.
func (s *Service) run(ctx context.Context, op string, call func() (Response, error), local store.Action) ([]cart.Item, error) {
	s.sink.Dispatch(store.SetLoading{Loading: store.Loading{Active: true}})

	resp, err := call()
	if err == nil && !resp.Success {
		err = fmt.Errorf("%w: %s", domain.ErrCartRejected, resp.Message)
	}
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}

	switch {
	case resp.Items != nil:
		s.sink.Dispatch(store.SetCart{Items: resp.Items})
	case local != nil:
		s.sink.Dispatch(local)
	default:
		s.sink.Dispatch(store.SetCart{Items: nil})
	}
	st := s.sink.Dispatch(store.SetLoading{Loading: store.Loading{}})
	metrics.CartOperationsTotal.WithLabelValues(op, "ok").Inc()
	return st.Cart, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	result := "error"
	if errors.Is(err, domain.ErrCartRejected) {
		result = "rejected"
	}
	metrics.CartOperationsTotal.WithLabelValues(op, result).Inc()

	if !errors.Is(err, domain.ErrTransientFetch) {
		err = fmt.Errorf("%w: %w", domain.ErrTransientFetch, err)
	}
	s.logger.Warn("Cart operation failed",
		zap.String("op", op),
		zap.Bool("canceled", ctx.Err() != nil),
		zap.Error(err),
	)
	s.sink.Dispatch(store.SetLoading{Loading: store.Loading{Error: err.Error()}})
	return fmt.Errorf("cart %s: %w", op, err)
}
