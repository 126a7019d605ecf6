package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/shopfront/internal/db"
	"github.com/kailas-cloud/shopfront/internal/domain"
	domcart "github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
)

var keyPrefix = domain.KeyPrefix + "cart:"

// store is the consumer interface for cart persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Repo stores each session's cart as one JSON value with a sliding TTL.
// Read-modify-write is not atomic across concurrent requests of the same
// session; the last write wins.
type Repo struct {
	store store
	ttl   time.Duration
	newID func() string
}

// New creates a cart repository. ttl <= 0 keeps carts forever.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl, newID: uuid.NewString}
}

// ForSession returns the cart API of one session.
func (r *Repo) ForSession(id string) cartuc.API {
	return &repoSession{r: r, key: keyPrefix + id}
}

func (r *Repo) load(ctx context.Context, key string) ([]domcart.Item, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var items []domcart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", key, err)
	}
	return items, nil
}

func (r *Repo) save(ctx context.Context, key string, items []domcart.Item) error {
	if len(items) == 0 {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// mutate loads, applies fn and saves the cart at key.
func (r *Repo) mutate(
	ctx context.Context, key string, fn func([]domcart.Item) []domcart.Item,
) ([]domcart.Item, error) {
	items, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	next := fn(items)
	if err := r.save(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

type repoSession struct {
	r   *Repo
	key string
}

func (s *repoSession) GetCart(ctx context.Context) (cartuc.Response, error) {
	items, err := s.r.load(ctx, s.key)
	if err != nil {
		return cartuc.Response{}, err
	}
	if len(items) > 0 && s.r.ttl > 0 {
		if err := s.r.store.Expire(ctx, s.key, s.r.ttl, false); err != nil {
			return cartuc.Response{}, fmt.Errorf("refresh cart ttl: %w", err)
		}
	}
	return ok(items), nil
}

func (s *repoSession) AddProductToCart(ctx context.Context, p product.Product, qty int) (cartuc.Response, error) {
	if resp, bad := invalidQuantity(qty); bad {
		return resp, nil
	}
	id := s.r.newID()
	items, err := s.r.mutate(ctx, s.key, func(items []domcart.Item) []domcart.Item {
		return domcart.Add(items, p, qty, id)
	})
	if err != nil {
		return cartuc.Response{}, err
	}
	return ok(items), nil
}

func (s *repoSession) RemoveFromCart(ctx context.Context, productID string) (cartuc.Response, error) {
	items, err := s.r.mutate(ctx, s.key, func(items []domcart.Item) []domcart.Item {
		return domcart.Remove(items, productID)
	})
	if err != nil {
		return cartuc.Response{}, err
	}
	return ok(items), nil
}

func (s *repoSession) UpdateCartItem(ctx context.Context, productID string, qty int) (cartuc.Response, error) {
	items, err := s.r.load(ctx, s.key)
	if err != nil {
		return cartuc.Response{}, err
	}
	if domcart.IndexOf(items, productID) < 0 {
		return notInCart(productID), nil
	}
	next := applyQuantity(items, productID, qty)
	if err := s.r.save(ctx, s.key, next); err != nil {
		return cartuc.Response{}, err
	}
	return ok(next), nil
}

func (s *repoSession) ClearCart(ctx context.Context) (cartuc.Response, error) {
	if err := s.r.save(ctx, s.key, nil); err != nil {
		return cartuc.Response{}, err
	}
	return ok(nil), nil
}
