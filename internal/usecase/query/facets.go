package query

import (
	"slices"

	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Availability counts products by stock status.
type Availability struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// PriceBounds is the cheapest and most expensive price in a catalog.
type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CategoryCount is a category with the number of products it holds.
type CategoryCount struct {
	ID    product.CategoryID `json:"id"`
	Count int                `json:"count"`
}

// Facets is the metadata a filter sidebar is built from.
type Facets struct {
	Availability Availability    `json:"availability"`
	Categories   []CategoryCount `json:"categories"`
	PriceRange   PriceBounds     `json:"priceRange"`
	BestSellers  int             `json:"bestSellers"`
	WithOffers   int             `json:"withOffers"`
}

// ComputeFacets summarizes a catalog snapshot. Categories are ordered by id.
func ComputeFacets(catalog []product.Product) Facets {
	f := Facets{Categories: []CategoryCount{}}
	counts := make(map[product.CategoryID]int)
	for i := range catalog {
		p := &catalog[i]
		if p.InStock {
			f.Availability.InStock++
		} else {
			f.Availability.OutOfStock++
		}
		if p.BestSeller {
			f.BestSellers++
		}
		if p.HasOffer() {
			f.WithOffers++
		}
		counts[p.Category]++
		if i == 0 || p.Price < f.PriceRange.Min {
			f.PriceRange.Min = p.Price
		}
		if i == 0 || p.Price > f.PriceRange.Max {
			f.PriceRange.Max = p.Price
		}
	}
	for id, n := range counts {
		f.Categories = append(f.Categories, CategoryCount{ID: id, Count: n})
	}
	slices.SortFunc(f.Categories, func(a, b CategoryCount) int { return int(a.ID) - int(b.ID) })
	return f
}
