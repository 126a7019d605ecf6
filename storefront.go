package shopfront

import (
	"context"
	"time"

	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
	"github.com/kailas-cloud/shopfront/internal/usecase/listing"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Storefront is one shopper's view: a state store, the product listing
// feeding it and any carts bound to it.
type Storefront struct {
	store   *store.Store
	session *listing.Session
	obs     *observer
}

func newStorefront(c *Client) *Storefront {
	st := store.New()
	if c.catalog != nil {
		st.Dispatch(store.SetMenuItems{Items: c.catalog.Menu()})
	}
	opts := []listing.Option{
		listing.WithDispatcher(st),
		listing.WithLogger(c.obs.logger),
	}
	if stale := c.obs.staleCounter(); stale != nil {
		opts = append(opts, listing.WithStaleCounter(stale))
	}
	return &Storefront{
		store:   st,
		session: listing.NewSession(c.provider, c.pageSize, opts...),
		obs:     c.obs,
	}
}

// Apply replaces the filters and reloads from page 1.
func (s *Storefront) Apply(ctx context.Context, f FilterState) (err error) {
	defer func(start time.Time) { s.obs.observe("listing.apply", start, err) }(time.Now())
	return s.session.Apply(ctx, f)
}

// Search sets the search text and reloads from page 1.
func (s *Storefront) Search(ctx context.Context, q string) (err error) {
	defer func(start time.Time) { s.obs.observe("listing.search", start, err) }(time.Now())
	return s.session.Search(ctx, q)
}

// SetCategory scopes the listing to a category and reloads from page 1.
func (s *Storefront) SetCategory(ctx context.Context, c Category) (err error) {
	defer func(start time.Time) { s.obs.observe("listing.set_category", start, err) }(time.Now())
	return s.session.SetCategory(ctx, c)
}

// LoadMore appends the next page. It does nothing while a query is in
// flight or when the last page is loaded.
func (s *Storefront) LoadMore(ctx context.Context) (err error) {
	defer func(start time.Time) { s.obs.observe("listing.load_more", start, err) }(time.Now())
	return s.session.LoadMore(ctx)
}

// Reset clears the listing and drops any in-flight result.
func (s *Storefront) Reset() { s.session.Reset() }

// Listing returns a copy of the listing session.
func (s *Storefront) Listing() ListingSnapshot { return s.session.Snapshot() }

// State returns the current store state.
func (s *Storefront) State() State { return s.store.State() }

// Subscribe calls fn with the new state after every change. Call the returned
// function to stop. fn must not call back into the Storefront.
func (s *Storefront) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.store.Subscribe(fn)
}

// SignIn sets the signed-in user; nil signs out.
func (s *Storefront) SignIn(u *User) { s.store.Dispatch(store.SetUser{User: u}) }

// Cart binds a cart API to this storefront's state.
func (s *Storefront) Cart(api CartAPI) *Cart {
	return &Cart{svc: cartuc.New(api, s.store, s.obs.logger), obs: s.obs}
}

// Cart runs cart operations and mirrors their outcome into the storefront
// state. A failed operation leaves the cart as it was.
type Cart struct {
	svc *cartuc.Service
	obs *observer
}

// Load replaces the local cart with the API's view.
func (c *Cart) Load(ctx context.Context) (items []CartItem, err error) {
	defer func(start time.Time) { c.obs.observe("cart.load", start, err) }(time.Now())
	return c.svc.Load(ctx)
}

// Add adds qty units of p, merging with an existing line.
func (c *Cart) Add(ctx context.Context, p Product, qty int) (items []CartItem, err error) {
	defer func(start time.Time) { c.obs.observe("cart.add", start, err) }(time.Now())
	return c.svc.Add(ctx, p, qty)
}

// Remove drops the line holding productID.
func (c *Cart) Remove(ctx context.Context, productID string) (items []CartItem, err error) {
	defer func(start time.Time) { c.obs.observe("cart.remove", start, err) }(time.Now())
	return c.svc.Remove(ctx, productID)
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, qty int) (items []CartItem, err error) {
	defer func(start time.Time) { c.obs.observe("cart.update", start, err) }(time.Now())
	return c.svc.UpdateQuantity(ctx, productID, qty)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) (items []CartItem, err error) {
	defer func(start time.Time) { c.obs.observe("cart.clear", start, err) }(time.Now())
	return c.svc.Clear(ctx)
}
