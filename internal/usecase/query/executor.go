package query

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/sorting"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Execute runs a filtered, sorted, paginated query over a catalog snapshot.
// The catalog slice is never modified. An empty match is not an error.
func Execute(catalog []product.Product, f filter.State, req page.Request) (page.Result, error) {
	if err := req.Validate(); err != nil {
		return page.Result{}, fmt.Errorf("execute query: %w", err)
	}
	f = f.Normalize()

	matched := Filter(catalog, f)
	Sort(matched, f.SortBy, f.SortOrder)

	total := len(matched)
	if req.PastEnd(total) {
		res := page.Empty(req)
		res.Total = total
		return res, nil
	}
	start := req.Offset()
	end := min(start+req.Limit(), total)

	return page.Result{
		Items:   slices.Clone(matched[start:end]),
		Total:   total,
		HasNext: page.HasNextPage(req, total),
		Page:    req.Page(),
		Limit:   req.Limit(),
	}, nil
}

// Filter returns the products matching f in catalog order.
func Filter(catalog []product.Product, f filter.State) []product.Product {
	out := make([]product.Product, 0, len(catalog))
	for i := range catalog {
		if f.Matches(&catalog[i]) {
			out = append(out, catalog[i])
		}
	}
	return out
}

// Sort orders items in place. The sort is stable, so equal keys keep their
// catalog order in both directions, and sorting.Default leaves items as is.
func Sort(items []product.Product, by sorting.SortBy, order sorting.Order) {
	if by == sorting.Default || by == "" {
		return
	}
	slices.SortStableFunc(items, func(a, b product.Product) int {
		c := sorting.Compare(by, &a, &b)
		if order == sorting.Desc {
			return -c
		}
		return c
	})
}
