package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/usecase/query"
)

// Repo serves catalog queries from an immutable in-memory snapshot.
type Repo struct {
	products   []product.Product
	categories []product.Category
	latency    time.Duration
	logger     *zap.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLatency delays every query by d, honoring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(r *Repo) { r.latency = d }
}

// WithLogger sets the repo logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// New creates a repo over snap. The snapshot is copied.
func New(snap Snapshot, opts ...Option) *Repo {
	r := &Repo{
		products:   slices.Clone(snap.Products),
		categories: slices.Clone(snap.Categories),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FetchPage queries the whole catalog.
func (r *Repo) FetchPage(ctx context.Context, f filter.State, req page.Request) (page.Result, error) {
	if err := r.wait(ctx); err != nil {
		return page.Result{}, err
	}
	res, err := query.Execute(r.products, f, req)
	if err != nil {
		return page.Result{}, fmt.Errorf("fetch page: %w", err)
	}
	return res, nil
}

// FetchByCategory queries the products of a category and its subcategories.
// An unknown category returns domain.ErrNotFound.
func (r *Repo) FetchByCategory(
	ctx context.Context, id product.CategoryID, f filter.State, req page.Request,
) (page.Result, error) {
	if err := r.wait(ctx); err != nil {
		return page.Result{}, err
	}
	if _, ok := r.Category(id); !ok {
		return page.Result{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}

	scope := r.subtree(id)
	scoped := make([]product.Product, 0, len(r.products))
	for i := range r.products {
		if slices.Contains(scope, r.products[i].Category) {
			scoped = append(scoped, r.products[i])
		}
	}
	res, err := query.Execute(scoped, f, req)
	if err != nil {
		return page.Result{}, fmt.Errorf("fetch category %d: %w", id, err)
	}
	return res, nil
}

// Product looks a product up by id.
func (r *Repo) Product(_ context.Context, id string) (product.Product, error) {
	for i := range r.products {
		if r.products[i].ProductID == id {
			return r.products[i], nil
		}
	}
	return product.Product{}, fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
}

// Category looks a category up by id.
func (r *Repo) Category(id product.CategoryID) (product.Category, bool) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return product.Category{}, false
}

// Categories returns all categories ordered by id.
func (r *Repo) Categories() []product.Category {
	out := slices.Clone(r.categories)
	slices.SortFunc(out, func(a, b product.Category) int { return int(a.ID) - int(b.ID) })
	return out
}

// Menu returns one navigation entry per top-level category.
func (r *Repo) Menu() []product.MenuItem {
	var out []product.MenuItem
	for _, c := range r.Categories() {
		if c.ParentID != nil {
			continue
		}
		id := c.ID
		out = append(out, product.MenuItem{
			Label:      c.Name,
			Path:       "/categories/" + strconv.Itoa(int(id)),
			CategoryID: &id,
		})
	}
	return out
}

// Facets summarizes the whole catalog.
func (r *Repo) Facets() query.Facets {
	return query.ComputeFacets(r.products)
}

// subtree returns id and all of its descendants.
func (r *Repo) subtree(id product.CategoryID) []product.CategoryID {
	out := []product.CategoryID{id}
	for i := 0; i < len(out); i++ {
		for _, c := range r.categories {
			if c.ParentID != nil && *c.ParentID == out[i] && !slices.Contains(out, c.ID) {
				out = append(out, c.ID)
			}
		}
	}
	return out
}

func (r *Repo) wait(ctx context.Context) error {
	if r.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("catalog query: %w", err)
		}
		return nil
	}
	t := time.NewTimer(r.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.logger.Debug("catalog query canceled", zap.Error(ctx.Err()))
		return fmt.Errorf("catalog query: %w", ctx.Err())
	}
}
