package page

import (
	"fmt"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Page size limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request is a validated 1-based page request.
type Request struct {
	page  int
	limit int
}

// NewRequest validates page >= 1 and limit > 0.
func NewRequest(page, limit int) (Request, error) {
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrValidation, page)
	}
	if limit <= 0 {
		return Request{}, fmt.Errorf("%w: limit must be > 0, got %d", domain.ErrValidation, limit)
	}
	return Request{page: page, limit: limit}, nil
}

// MustRequest is NewRequest for constant arguments; it panics on invalid input.
func MustRequest(page, limit int) Request {
	r, err := NewRequest(page, limit)
	if err != nil {
		panic(err)
	}
	return r
}

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// Limit returns the page size.
func (r Request) Limit() int { return r.limit }

// Offset returns the index of the first item of the page.
// Callers check PastEnd first: a huge page overflows the product.
func (r Request) Offset() int { return (r.page - 1) * r.limit }

// PastEnd reports whether the page starts at or beyond total items.
func (r Request) PastEnd(total int) bool {
	return total <= 0 || r.page-1 > (total-1)/r.limit
}

// Next returns the request for the following page.
func (r Request) Next() Request { return Request{page: r.page + 1, limit: r.limit} }

// Validate re-checks a request that may have been built as a zero value.
func (r Request) Validate() error {
	_, err := NewRequest(r.page, r.limit)
	return err
}

// Result is one page of a filtered, sorted listing.
type Result struct {
	Items   []product.Product `json:"items"`
	Total   int               `json:"total"`
	HasNext bool              `json:"hasNext"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}

// Empty returns the result of a query that matched nothing.
func Empty(r Request) Result {
	return Result{Items: []product.Product{}, Page: r.page, Limit: r.limit}
}

// HasNextPage reports whether items remain past the given page.
func HasNextPage(r Request, total int) bool {
	if total <= 0 {
		return false
	}
	return r.page-1 < (total-1)/r.limit
}

// TotalPages returns the number of pages needed for total items, at least 1.
func (res Result) TotalPages() int {
	if res.Total == 0 || res.Limit <= 0 {
		return 1
	}
	pages := res.Total / res.Limit
	if res.Total%res.Limit > 0 {
		pages++
	}
	return pages
}
