package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/metrics"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Status is the state of a listing session.
type Status int

// Session states. There is no error state: a failed fetch returns to Idle
// with whatever was last loaded successfully.
const (
	Idle Status = iota
	Loading
	LoadingMore
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case LoadingMore:
		return "loading_more"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Snapshot is a point-in-time copy of a session. Filters and Category are
// the state Items were loaded under.
type Snapshot struct {
	Status   Status
	Filters  filter.State
	Category *product.CategoryID
	Items    []product.Product
	Page     int
	Limit    int
	Total    int
	HasNext  bool
	// Err is the last transient failure; cleared by the next successful fetch.
	Err error
}

// Session drives a product listing: filter changes replace the list from
// page 1, LoadMore appends the next page.
//
// Every replace bumps a generation counter. A result is applied only if the
// generation it was issued under is still current, so a slow query can never
// overwrite the result of a newer one, and a filter change discards any
// in-flight LoadMore. Actions are dispatched while the session lock is held
// to keep the store in issue order; listeners must not call back into the
// session synchronously.
type Session struct {
	provider   Provider
	sink       Dispatcher
	limit      int
	logger     *zap.Logger
	staleTotal *prometheus.CounterVec

	mu       sync.Mutex
	status   Status
	filters  filter.State
	category *product.CategoryID
	// requested is the state of the newest replace; it falls back to the
	// committed filters and category when that replace fails.
	requested         filter.State
	requestedCategory *product.CategoryID
	items             []product.Product
	page              int
	total             int
	hasNext           bool
	generation        uint64
	loadingMore       bool
	lastErr           error
}

// Option configures a Session.
type Option func(*Session)

// WithDispatcher mirrors accepted results into a store.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Session) { s.sink = d }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithStaleCounter counts discarded results by slot ("replace" / "append")
// instead of metrics.StaleResultsTotal. nil disables counting.
func WithStaleCounter(c *prometheus.CounterVec) Option {
	return func(s *Session) { s.staleTotal = c }
}

// WithCategory starts the session scoped to a category listing.
func WithCategory(id product.CategoryID) Option {
	return func(s *Session) { s.category = &id }
}

// NewSession creates a session that loads limit items per page.
func NewSession(provider Provider, limit int, opts ...Option) *Session {
	if limit <= 0 {
		limit = page.DefaultLimit
	}
	s := &Session{
		provider:   provider,
		limit:      limit,
		logger:     zap.NewNop(),
		staleTotal: metrics.StaleResultsTotal,
		filters:    filter.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.requested = s.filters
	s.requestedCategory = copyCategory(s.category)
	return s
}

// Apply replaces the filters and reloads the list from page 1.
// It returns domain.ErrSuperseded if a newer Apply won the race.
func (s *Session) Apply(ctx context.Context, f filter.State) error {
	return s.replace(ctx, "apply filters", f, scope{})
}

// Search sets the free-text query. A non-empty query clears both the
// category filter and the category scope so results span the whole catalog.
func (s *Session) Search(ctx context.Context, q string) error {
	s.mu.Lock()
	f := s.requested.WithSearch(q)
	var sc scope
	if f.Search != "" && s.requestedCategory != nil {
		sc = scope{set: true}
	}
	s.mu.Unlock()

	return s.replace(ctx, "search", f, sc)
}

// SetCategory scopes the listing to a category. The search text is kept.
func (s *Session) SetCategory(ctx context.Context, c product.Category) error {
	s.mu.Lock()
	f := s.requested
	s.mu.Unlock()

	id := c.ID
	return s.replace(ctx, "set category", f, scope{set: true, id: &id, current: &c})
}

// scope is a category change that travels with a replace.
type scope struct {
	set     bool
	id      *product.CategoryID
	current *product.Category
}

// replace loads page 1 of f. The filters and category become the session's
// own only when that page is accepted; a failed or superseded load leaves
// the loaded list and the state it was fetched under together.
func (s *Session) replace(ctx context.Context, op string, f filter.State, sc scope) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	f = f.Normalize()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	category := copyCategory(s.requestedCategory)
	if sc.set {
		category = copyCategory(sc.id)
	}
	s.requested = f
	s.requestedCategory = copyCategory(category)
	s.status = Loading
	s.loadingMore = false
	s.dispatch(store.SetLoading{Loading: store.Loading{Active: true}})
	s.mu.Unlock()

	req := page.MustRequest(1, s.limit)
	res, err := s.fetch(ctx, category, f, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.discard("replace", gen)
		return domain.ErrSuperseded
	}
	s.status = Idle
	if err != nil {
		s.requested = s.filters
		s.requestedCategory = copyCategory(s.category)
		return s.fail(op, err)
	}

	s.filters = f
	s.category = category
	s.items = slices.Clone(res.Items)
	s.page = req.Page()
	s.total = res.Total
	s.hasNext = res.HasNext
	s.lastErr = nil

	if sc.set {
		s.dispatch(store.SetCurrentCategory{Category: sc.current})
	}
	s.dispatch(store.SetProducts{Products: s.items})
	s.dispatch(store.SetPagination{Pagination: s.pagination()})
	s.dispatch(store.SetLoading{Loading: store.Loading{}})
	return nil
}

// LoadMore appends the next page. It is a no-op unless the session is Idle
// and another page exists, so a second call while one is in flight does nothing.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.status != Idle || !s.hasNext || s.loadingMore {
		s.mu.Unlock()
		return nil
	}
	s.loadingMore = true
	s.status = LoadingMore
	gen := s.generation
	f := s.filters
	category := copyCategory(s.category)
	req := page.MustRequest(s.page+1, s.limit)
	s.dispatch(store.SetLoading{Loading: store.Loading{Active: true}})
	s.mu.Unlock()

	res, err := s.fetch(ctx, category, f, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.discard("append", gen)
		return domain.ErrSuperseded
	}
	s.loadingMore = false
	s.status = Idle
	if err != nil {
		return s.fail("load more", err)
	}

	before := len(s.items)
	s.items = AppendPage(s.items, res.Items)
	s.page = req.Page()
	s.total = res.Total
	s.hasNext = res.HasNext
	s.lastErr = nil

	s.dispatch(store.AppendProducts{Products: s.items[before:]})
	s.dispatch(store.SetPagination{Pagination: s.pagination()})
	s.dispatch(store.SetLoading{Loading: store.Loading{}})
	return nil
}

// Reset drops everything loaded and invalidates in-flight queries.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.status = Idle
	s.requested = s.filters
	s.requestedCategory = copyCategory(s.category)
	s.items = nil
	s.page = 0
	s.total = 0
	s.hasNext = false
	s.loadingMore = false
	s.lastErr = nil

	s.dispatch(store.SetProducts{Products: nil})
	s.dispatch(store.SetPagination{Pagination: store.Pagination{Limit: s.limit}})
	s.dispatch(store.SetLoading{Loading: store.Loading{}})
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Status:   s.status,
		Filters:  s.filters,
		Category: copyCategory(s.category),
		Items:    slices.Clone(s.items),
		Page:     s.page,
		Limit:    s.limit,
		Total:    s.total,
		HasNext:  s.hasNext,
		Err:      s.lastErr,
	}
}

// fetch calls the provider outside the session lock. A missing category is
// an empty page, everything else is a transient failure.
func (s *Session) fetch(
	ctx context.Context, category *product.CategoryID, f filter.State, req page.Request,
) (page.Result, error) {
	var (
		res page.Result
		err error
	)
	if category != nil {
		res, err = s.provider.FetchByCategory(ctx, *category, f, req)
	} else {
		res, err = s.provider.FetchPage(ctx, f, req)
	}
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Debug("category not found, treating as empty", zap.Error(err))
		return page.Empty(req), nil
	case errors.Is(err, domain.ErrTransientFetch):
		return page.Result{}, err
	default:
		return page.Result{}, fmt.Errorf("%w: %w", domain.ErrTransientFetch, err)
	}
}

// fail records a transient error; loaded items stay untouched. Caller holds mu.
func (s *Session) fail(op string, err error) error {
	s.lastErr = err
	s.logger.Warn("listing fetch failed", zap.String("op", op), zap.Error(err))
	s.dispatch(store.SetLoading{Loading: store.Loading{Error: err.Error()}})
	return fmt.Errorf("%s: %w", op, err)
}

// discard drops a superseded result. Caller holds mu.
func (s *Session) discard(slot string, gen uint64) {
	s.logger.Debug("discarding stale result",
		zap.String("slot", slot),
		zap.Uint64("generation", gen),
		zap.Uint64("current", s.generation),
	)
	if s.staleTotal != nil {
		s.staleTotal.WithLabelValues(slot).Inc()
	}
}

func (s *Session) dispatch(a store.Action) {
	if s.sink != nil {
		s.sink.Dispatch(a)
	}
}

func (s *Session) pagination() store.Pagination {
	return store.Pagination{Page: s.page, Limit: s.limit, Total: s.total, HasNext: s.hasNext}
}

func copyCategory(c *product.CategoryID) *product.CategoryID {
	if c == nil {
		return nil
	}
	id := *c
	return &id
}
