package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/usecase/query"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// fakeProvider serves pages from an in-memory catalog. Calls with a gate
// announce themselves on started and block until the gate is closed.
type fakeProvider struct {
	mu         sync.Mutex
	catalog    []product.Product
	calls      int
	byCategory int
	gates      map[int]chan struct{}
	errs       map[int]error
	started    chan int
}

func newFakeProvider(n int) *fakeProvider {
	return &fakeProvider{
		catalog: makeCatalog(n),
		gates:   map[int]chan struct{}{},
		errs:    map[int]error{},
		started: make(chan int, 8),
	}
}

func makeCatalog(n int) []product.Product {
	out := make([]product.Product, n)
	for i := range out {
		out[i] = product.Product{
			ProductID: fmt.Sprintf("p%02d", i+1),
			Name:      fmt.Sprintf("Product %02d", i+1),
			Price:     float64(10 + i),
			Rating:    float64(i%5 + 1),
			Category:  product.CategoryID(i%3 + 1),
			InStock:   i%2 == 0,
		}
	}
	return out
}

// gate makes call number n block until the returned channel is closed.
func (p *fakeProvider) gate(n int) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gates[n] = ch
	return ch
}

func (p *fakeProvider) failOn(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[n] = err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvider) enter(ctx context.Context) error {
	p.mu.Lock()
	n := p.calls
	p.calls++
	gate := p.gates[n]
	err := p.errs[n]
	p.mu.Unlock()

	if gate != nil {
		p.started <- n
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *fakeProvider) FetchPage(ctx context.Context, f filter.State, req page.Request) (page.Result, error) {
	if err := p.enter(ctx); err != nil {
		return page.Result{}, err
	}
	return query.Execute(p.catalog, f, req)
}

func (p *fakeProvider) FetchByCategory(
	ctx context.Context, id product.CategoryID, f filter.State, req page.Request,
) (page.Result, error) {
	p.mu.Lock()
	p.byCategory++
	p.mu.Unlock()
	if err := p.enter(ctx); err != nil {
		return page.Result{}, err
	}
	var scoped []product.Product
	for _, it := range p.catalog {
		if it.Category == id {
			scoped = append(scoped, it)
		}
	}
	if scoped == nil {
		return page.Result{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return query.Execute(scoped, f, req)
}

func ids(items []product.Product) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ProductID
	}
	return out
}

func TestApply_FirstPage(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)

	if err := s.Apply(context.Background(), filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != Idle {
		t.Errorf("Status = %v, want idle", snap.Status)
	}
	if len(snap.Items) != 10 || snap.Total != 25 || !snap.HasNext || snap.Page != 1 {
		t.Errorf("snapshot = items:%d total:%d hasNext:%v page:%d",
			len(snap.Items), snap.Total, snap.HasNext, snap.Page)
	}
}

func TestApply_InvalidFilterSkipsProvider(t *testing.T) {
	prov := newFakeProvider(5)
	s := NewSession(prov, 10)

	f := filter.Default()
	f.PriceRange = filter.PriceRange{Min: 50, Max: 10}
	err := s.Apply(context.Background(), f)
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
	if prov.callCount() != 0 {
		t.Errorf("provider called %d times", prov.callCount())
	}
}

func TestLoadMore_AccumulatesToEnd(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for range 2 {
		if err := s.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore: %v", err)
		}
	}
	snap := s.Snapshot()
	if len(snap.Items) != 25 || snap.HasNext || snap.Page != 3 {
		t.Fatalf("items=%d hasNext=%v page=%d", len(snap.Items), snap.HasNext, snap.Page)
	}
	seen := map[string]bool{}
	for _, id := range ids(snap.Items) {
		if seen[id] {
			t.Errorf("duplicate item %s", id)
		}
		seen[id] = true
	}

	calls := prov.callCount()
	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore past end: %v", err)
	}
	if prov.callCount() != calls {
		t.Error("LoadMore without a next page reached the provider")
	}
}

func TestLoadMore_IgnoredWhileInFlight(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()
	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	release := prov.gate(1)
	done := make(chan error, 1)
	go func() { done <- s.LoadMore(ctx) }()
	<-prov.started

	if got := s.Snapshot().Status; got != LoadingMore {
		t.Errorf("Status = %v, want loading_more", got)
	}
	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("second LoadMore: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	if prov.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", prov.callCount())
	}
	if snap := s.Snapshot(); len(snap.Items) != 20 || snap.Page != 2 {
		t.Errorf("items=%d page=%d, want 20 and 2", len(snap.Items), snap.Page)
	}
}

func TestApply_StaleResultDiscarded(t *testing.T) {
	prov := newFakeProvider(25)
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "stale"}, []string{"slot"})
	s := NewSession(prov, 10, WithStaleCounter(stale))
	ctx := context.Background()

	release := prov.gate(0)
	slow := make(chan error, 1)
	go func() { slow <- s.Apply(ctx, filter.Default()) }()
	<-prov.started

	inStock := filter.Default()
	inStock.InStock = true
	if err := s.Apply(ctx, inStock); err != nil {
		t.Fatalf("fast Apply: %v", err)
	}
	want := ids(s.Snapshot().Items)

	close(release)
	if err := <-slow; !errors.Is(err, domain.ErrSuperseded) {
		t.Fatalf("slow Apply err = %v, want ErrSuperseded", err)
	}

	snap := s.Snapshot()
	if fmt.Sprint(ids(snap.Items)) != fmt.Sprint(want) {
		t.Errorf("items = %v, want %v", ids(snap.Items), want)
	}
	if snap.Total != 13 || !snap.Filters.InStock {
		t.Errorf("total=%d inStock=%v, want the newer query", snap.Total, snap.Filters.InStock)
	}
	if got := testutil.ToFloat64(stale.WithLabelValues("replace")); got != 1 {
		t.Errorf("stale replace = %v, want 1", got)
	}
}

func TestLoadMore_InvalidatedByFilterChange(t *testing.T) {
	prov := newFakeProvider(25)
	sink := store.New()
	s := NewSession(prov, 10, WithDispatcher(sink))
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	release := prov.gate(1)
	more := make(chan error, 1)
	go func() { more <- s.LoadMore(ctx) }()
	<-prov.started

	f := filter.Default().WithCategories(2)
	if err := s.Apply(ctx, f); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	close(release)
	if err := <-more; !errors.Is(err, domain.ErrSuperseded) {
		t.Fatalf("LoadMore err = %v, want ErrSuperseded", err)
	}

	snap := s.Snapshot()
	if snap.Page != 1 || snap.Total != 8 || len(snap.Items) != 8 {
		t.Errorf("page=%d total=%d items=%d", snap.Page, snap.Total, len(snap.Items))
	}
	for _, it := range snap.Items {
		if it.Category != 2 {
			t.Errorf("item %s from category %d leaked in", it.ProductID, it.Category)
		}
	}
	if got := sink.State(); len(got.Products) != 8 || got.Pagination.Page != 1 {
		t.Errorf("store products=%d page=%d", len(got.Products), got.Pagination.Page)
	}
}

func TestLoadMore_FailureKeepsItems(t *testing.T) {
	prov := newFakeProvider(25)
	sink := store.New()
	s := NewSession(prov, 10, WithDispatcher(sink))
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	prov.failOn(1, errors.New("connection reset"))

	err := s.LoadMore(ctx)
	if !errors.Is(err, domain.ErrTransientFetch) {
		t.Fatalf("err = %v, want ErrTransientFetch", err)
	}
	snap := s.Snapshot()
	if snap.Status != Idle || len(snap.Items) != 10 || snap.Page != 1 || !snap.HasNext {
		t.Errorf("status=%v items=%d page=%d hasNext=%v", snap.Status, len(snap.Items), snap.Page, snap.HasNext)
	}
	if snap.Err == nil {
		t.Error("Snapshot.Err not recorded")
	}
	if st := sink.State(); st.Loading.Active || st.Loading.Error == "" {
		t.Errorf("store loading = %+v", st.Loading)
	}

	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("retry LoadMore: %v", err)
	}
	snap = s.Snapshot()
	if len(snap.Items) != 20 || snap.Err != nil {
		t.Errorf("after retry items=%d err=%v", len(snap.Items), snap.Err)
	}
	if st := sink.State(); st.Loading.Error != "" {
		t.Errorf("store error not cleared: %q", st.Loading.Error)
	}
}

func TestApply_FailureKeepsPreviousList(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	prov.failOn(1, fmt.Errorf("upstream: %w", domain.ErrTransientFetch))

	f := filter.Default()
	f.BestSeller = true
	if err := s.Apply(ctx, f); !errors.Is(err, domain.ErrTransientFetch) {
		t.Fatalf("err = %v, want ErrTransientFetch", err)
	}
	if snap := s.Snapshot(); len(snap.Items) != 10 || snap.Status != Idle {
		t.Errorf("items=%d status=%v", len(snap.Items), snap.Status)
	}
}

func TestLoadMore_AfterFailedApplyStaysOnLoadedFilters(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	prov.failOn(1, errors.New("connection reset"))

	inStock := filter.Default()
	inStock.InStock = true
	if err := s.Apply(ctx, inStock); !errors.Is(err, domain.ErrTransientFetch) {
		t.Fatalf("err = %v, want ErrTransientFetch", err)
	}
	if snap := s.Snapshot(); snap.Filters.InStock {
		t.Fatal("failed Apply committed its filters")
	}

	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	snap := s.Snapshot()
	want, err := query.Execute(prov.catalog, snap.Filters, page.MustRequest(1, 20))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fmt.Sprint(ids(snap.Items)) != fmt.Sprint(ids(want.Items)) {
		t.Errorf("items = %v, want %v", ids(snap.Items), ids(want.Items))
	}
	for _, it := range snap.Items {
		if !snap.Filters.Matches(&it) {
			t.Errorf("item %s does not match the session filters", it.ProductID)
		}
	}
}

func TestSetCategory_FailureKeepsScope(t *testing.T) {
	prov := newFakeProvider(25)
	sink := store.New()
	s := NewSession(prov, 10, WithDispatcher(sink))
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	prov.failOn(1, errors.New("timeout"))

	if err := s.SetCategory(ctx, product.Category{ID: 2, Name: "Toys"}); !errors.Is(err, domain.ErrTransientFetch) {
		t.Fatalf("err = %v, want ErrTransientFetch", err)
	}
	snap := s.Snapshot()
	if snap.Category != nil {
		t.Errorf("Category = %v, want nil", *snap.Category)
	}
	if sink.State().CurrentCategory != nil {
		t.Error("store CurrentCategory set by a failed load")
	}

	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if prov.byCategory != 1 {
		t.Errorf("category fetches = %d, want only the failed one", prov.byCategory)
	}
	if snap := s.Snapshot(); len(snap.Items) != 20 || snap.Page != 2 {
		t.Errorf("items=%d page=%d", len(snap.Items), snap.Page)
	}
}

func TestSearch_ClearsCategoryScope(t *testing.T) {
	prov := newFakeProvider(25)
	sink := store.New()
	s := NewSession(prov, 10, WithDispatcher(sink))
	ctx := context.Background()

	if err := s.SetCategory(ctx, product.Category{ID: 3, Name: "Garden"}); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if st := sink.State(); st.CurrentCategory == nil || st.CurrentCategory.ID != 3 {
		t.Fatalf("CurrentCategory = %+v", st.CurrentCategory)
	}

	if err := s.Search(ctx, "  product 1 "); err != nil {
		t.Fatalf("Search: %v", err)
	}
	snap := s.Snapshot()
	if snap.Category != nil {
		t.Errorf("Category = %v, want nil", *snap.Category)
	}
	if snap.Filters.Search != "product 1" {
		t.Errorf("Search = %q", snap.Filters.Search)
	}
	// Product 10..19 across all categories.
	if snap.Total != 10 {
		t.Errorf("Total = %d, want 10", snap.Total)
	}
	if sink.State().CurrentCategory != nil {
		t.Error("store still scoped to a category")
	}
	if prov.byCategory != 1 {
		t.Errorf("category fetches = %d, want 1", prov.byCategory)
	}
}

func TestSetCategory_KeepsSearch(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()

	if err := s.Search(ctx, "product 1"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := s.SetCategory(ctx, product.Category{ID: 1}); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	snap := s.Snapshot()
	if snap.Filters.Search != "product 1" {
		t.Errorf("Search = %q, want kept", snap.Filters.Search)
	}
	for _, it := range snap.Items {
		if it.Category != 1 {
			t.Errorf("item %s in category %d", it.ProductID, it.Category)
		}
	}
}

func TestSetCategory_UnknownIsEmpty(t *testing.T) {
	prov := newFakeProvider(6)
	s := NewSession(prov, 10)

	if err := s.SetCategory(context.Background(), product.Category{ID: 99}); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Items) != 0 || snap.Total != 0 || snap.HasNext || snap.Err != nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSession_MirrorsIntoStore(t *testing.T) {
	prov := newFakeProvider(25)
	sink := store.New()
	s := NewSession(prov, 10, WithDispatcher(sink))
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	st := sink.State()
	if len(st.Products) != 20 {
		t.Errorf("store products = %d, want 20", len(st.Products))
	}
	want := store.Pagination{Page: 2, Limit: 10, Total: 25, HasNext: true}
	if st.Pagination != want {
		t.Errorf("Pagination = %+v, want %+v", st.Pagination, want)
	}
	if st.Loading.Active {
		t.Error("store still loading")
	}
}

func TestReset(t *testing.T) {
	prov := newFakeProvider(25)
	s := NewSession(prov, 10)
	ctx := context.Background()

	if err := s.Apply(ctx, filter.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	s.Reset()
	snap := s.Snapshot()
	if len(snap.Items) != 0 || snap.HasNext || snap.Page != 0 {
		t.Errorf("snapshot after reset = %+v", snap)
	}
	if err := s.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore after reset: %v", err)
	}
	if prov.callCount() != 1 {
		t.Error("LoadMore after reset reached the provider")
	}
}

func TestAppendPage(t *testing.T) {
	a := []product.Product{{ProductID: "1"}, {ProductID: "2"}}
	b := []product.Product{{ProductID: "2"}, {ProductID: "3"}, {ProductID: "3"}}

	got := AppendPage(a, b)
	if fmt.Sprint(ids(got)) != "[1 2 3]" {
		t.Errorf("AppendPage = %v", ids(got))
	}
	if len(a) != 2 {
		t.Error("existing slice modified")
	}
	if got := AppendPage(nil, nil); len(got) != 0 {
		t.Errorf("AppendPage(nil, nil) = %v", got)
	}
}
