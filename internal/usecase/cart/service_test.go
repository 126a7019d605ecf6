package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

type mockAPI struct {
	resp  Response
	err   error
	calls []string
	qty   int
}

func (m *mockAPI) GetCart(_ context.Context) (Response, error) {
	m.calls = append(m.calls, "get")
	return m.resp, m.err
}

func (m *mockAPI) AddProductToCart(_ context.Context, _ product.Product, qty int) (Response, error) {
	m.calls = append(m.calls, "add")
	m.qty = qty
	return m.resp, m.err
}

func (m *mockAPI) RemoveFromCart(_ context.Context, _ string) (Response, error) {
	m.calls = append(m.calls, "remove")
	return m.resp, m.err
}

func (m *mockAPI) UpdateCartItem(_ context.Context, _ string, qty int) (Response, error) {
	m.calls = append(m.calls, "update")
	m.qty = qty
	return m.resp, m.err
}

func (m *mockAPI) ClearCart(_ context.Context) (Response, error) {
	m.calls = append(m.calls, "clear")
	return m.resp, m.err
}

func seeded() *store.Store {
	return store.New(store.WithInitialState(store.State{Cart: []cart.Item{
		{ID: "1", Product: product.Product{ProductID: "A", Price: 5}, Quantity: 2},
	}}))
}

func TestAdd_AppliesLocallyWhenAPIReturnsNoItems(t *testing.T) {
	api := &mockAPI{resp: Response{Success: true}}
	st := seeded()
	svc := New(api, st, nil)

	items, err := svc.Add(context.Background(), product.Product{ProductID: "A"}, 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Errorf("items = %+v, want A x5", items)
	}
	if st.State().Loading.Active {
		t.Error("still loading")
	}
}

func TestAdd_UsesAuthoritativeItems(t *testing.T) {
	server := []cart.Item{{ID: "srv", Product: product.Product{ProductID: "B"}, Quantity: 1}}
	api := &mockAPI{resp: Response{Success: true, Items: server}}
	st := seeded()
	svc := New(api, st, nil)

	items, err := svc.Add(context.Background(), product.Product{ProductID: "B"}, 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 1 || items[0].ID != "srv" {
		t.Errorf("items = %+v, want the API's cart", items)
	}
}

func TestFailureKeepsState(t *testing.T) {
	tests := []struct {
		name     string
		api      *mockAPI
		rejected bool
	}{
		{"rejected", &mockAPI{resp: Response{Success: false, Message: "out of stock"}}, true},
		{"transport error", &mockAPI{err: errors.New("dial tcp: refused")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seeded()
			svc := New(tt.api, st, nil)

			_, err := svc.Add(context.Background(), product.Product{ProductID: "A"}, 1)
			if !errors.Is(err, domain.ErrTransientFetch) {
				t.Fatalf("err = %v, want ErrTransientFetch", err)
			}
			if errors.Is(err, domain.ErrCartRejected) != tt.rejected {
				t.Errorf("ErrCartRejected = %v, want %v", !tt.rejected, tt.rejected)
			}

			got := st.State()
			if len(got.Cart) != 1 || got.Cart[0].Quantity != 2 {
				t.Errorf("cart changed: %+v", got.Cart)
			}
			if got.Loading.Active || got.Loading.Error == "" {
				t.Errorf("loading = %+v", got.Loading)
			}
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		qty      int
		wantCall string
		wantLen  int
	}{
		{"positive sets quantity", 7, "update", 1},
		{"zero removes", 0, "remove", 0},
		{"negative removes", -1, "remove", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{resp: Response{Success: true}}
			st := seeded()
			svc := New(api, st, nil)

			items, err := svc.UpdateQuantity(context.Background(), "A", tt.qty)
			if err != nil {
				t.Fatalf("UpdateQuantity: %v", err)
			}
			if len(api.calls) != 1 || api.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", api.calls, tt.wantCall)
			}
			if len(items) != tt.wantLen {
				t.Errorf("lines = %d, want %d", len(items), tt.wantLen)
			}
			if tt.wantLen == 1 && items[0].Quantity != tt.qty {
				t.Errorf("quantity = %d, want %d", items[0].Quantity, tt.qty)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	api := &mockAPI{resp: Response{Success: true}}
	svc := New(api, seeded(), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, product.Product{ProductID: "A"}, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Add qty 0: err = %v", err)
	}
	if _, err := svc.Add(ctx, product.Product{}, 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Add empty id: err = %v", err)
	}
	if _, err := svc.Remove(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Remove empty id: err = %v", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("API called on invalid input: %v", api.calls)
	}
}

func TestLoadAndClear(t *testing.T) {
	api := &mockAPI{resp: Response{Success: true, Items: []cart.Item{
		{ID: "x", Product: product.Product{ProductID: "Z"}, Quantity: 4},
	}}}
	st := store.New()
	svc := New(api, st, nil)
	ctx := context.Background()

	items, err := svc.Load(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("Load = %+v, %v", items, err)
	}

	api.resp = Response{Success: true}
	items, err = svc.Clear(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("Clear = %+v, %v", items, err)
	}
	if len(st.State().Cart) != 0 {
		t.Error("store cart not cleared")
	}
}
