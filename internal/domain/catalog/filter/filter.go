package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/sorting"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Filter limits.
const (
	// DefaultMaxPrice is the upper bound of the default price range.
	DefaultMaxPrice = 10000.0
	MinRating       = 1
	MaxRating       = 5
	// MaxSearchLength is the maximum allowed free-text search length.
	MaxSearchLength = 256
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether price lies within [Min, Max].
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// State is the complete set of user-chosen narrowing and sorting criteria
// for a product listing.
type State struct {
	Search     string
	PriceRange PriceRange
	// Categories is a set; empty means no category restriction.
	Categories []product.CategoryID
	// Ratings is a set of star thresholds in [1,5], OR-ed together.
	Ratings    []int
	InStock    bool
	BestSeller bool
	HasOffer   bool
	SortBy     sorting.SortBy
	SortOrder  sorting.Order
}

// Default returns the state a listing starts from: nothing narrowed,
// full default price range, natural order.
func Default() State {
	return State{
		PriceRange: PriceRange{Min: 0, Max: DefaultMaxPrice},
		SortBy:     sorting.Default,
		SortOrder:  sorting.Asc,
	}
}

// Validate checks the state invariants.
func (s State) Validate() error {
	if s.PriceRange.Min < 0 || s.PriceRange.Max < 0 {
		return fmt.Errorf("%w: price bounds must be >= 0", domain.ErrInvalidFilter)
	}
	if s.PriceRange.Min > s.PriceRange.Max {
		return fmt.Errorf("%w: price min %.2f exceeds max %.2f",
			domain.ErrInvalidFilter, s.PriceRange.Min, s.PriceRange.Max)
	}
	if math.IsNaN(s.PriceRange.Min) || math.IsNaN(s.PriceRange.Max) {
		return fmt.Errorf("%w: price bounds must be numbers", domain.ErrInvalidFilter)
	}
	if math.IsInf(s.PriceRange.Min, 0) || math.IsInf(s.PriceRange.Max, 0) {
		return fmt.Errorf("%w: price bounds must be finite", domain.ErrInvalidFilter)
	}
	for _, r := range s.Ratings {
		if r < MinRating || r > MaxRating {
			return fmt.Errorf("%w: rating %d out of range [%d,%d]",
				domain.ErrInvalidFilter, r, MinRating, MaxRating)
		}
	}
	if len(s.Search) > MaxSearchLength {
		return fmt.Errorf("%w: search too long (max %d chars)", domain.ErrInvalidFilter, MaxSearchLength)
	}
	if !s.SortBy.IsValid() {
		return fmt.Errorf("%w: invalid sort field %q", domain.ErrInvalidFilter, s.SortBy)
	}
	if !s.SortOrder.IsValid() {
		return fmt.Errorf("%w: invalid sort order %q", domain.ErrInvalidFilter, s.SortOrder)
	}
	return nil
}

// Normalize returns a copy with sets sorted and de-duplicated (nil when empty)
// and empty sort fields replaced by their defaults.
func (s State) Normalize() State {
	out := s
	out.Categories = normalizeSet(s.Categories)
	out.Ratings = normalizeSet(s.Ratings)
	if out.SortBy == "" {
		out.SortBy = sorting.Default
	}
	if out.SortOrder == "" {
		out.SortOrder = sorting.Asc
	}
	return out
}

func normalizeSet[T int | product.CategoryID](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// WithSearch sets the free-text query. A non-empty query replaces the
// category scope: search results span the whole catalog.
func (s State) WithSearch(q string) State {
	out := s
	out.Search = strings.TrimSpace(q)
	if out.Search != "" {
		out.Categories = nil
	}
	return out
}

// WithCategories replaces the category set. The search text is left as is.
func (s State) WithCategories(ids ...product.CategoryID) State {
	out := s
	out.Categories = normalizeSet(ids)
	return out
}

// HasCategory reports whether id is in the category set.
func (s State) HasCategory(id product.CategoryID) bool {
	return slices.Contains(s.Categories, id)
}

// MinRatingThreshold returns the lowest selected star threshold, or 0 if
// no rating filter is selected. "N stars & up" thresholds OR together, so the
// lowest one decides.
func (s State) MinRatingThreshold() int {
	if len(s.Ratings) == 0 {
		return 0
	}
	return slices.Min(s.Ratings)
}

// Matches applies the predicates in order, short-circuiting on the first miss:
// category, price, rating, in stock, best seller, offer, free text.
func (s State) Matches(p *product.Product) bool {
	if len(s.Categories) > 0 && !s.HasCategory(p.Category) {
		return false
	}
	if !s.PriceRange.Contains(p.Price) {
		return false
	}
	if t := s.MinRatingThreshold(); t > 0 && int(math.Round(p.Rating)) < t {
		return false
	}
	if s.InStock && !p.InStock {
		return false
	}
	if s.BestSeller && !p.BestSeller {
		return false
	}
	if s.HasOffer && !p.HasOffer() {
		return false
	}
	if s.Search != "" {
		q := strings.ToLower(s.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// Equal reports semantic equality: sets compared as sets, numbers numerically.
func (s State) Equal(o State) bool {
	a, b := s.Normalize(), o.Normalize()
	return a.Search == b.Search &&
		a.PriceRange == b.PriceRange &&
		slices.Equal(a.Categories, b.Categories) &&
		slices.Equal(a.Ratings, b.Ratings) &&
		a.InStock == b.InStock &&
		a.BestSeller == b.BestSeller &&
		a.HasOffer == b.HasOffer &&
		a.SortBy == b.SortBy &&
		a.SortOrder == b.SortOrder
}
