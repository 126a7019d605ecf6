package shopfront

import (
	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/sorting"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
	"github.com/kailas-cloud/shopfront/internal/usecase/listing"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Catalog entities.
type (
	Product    = product.Product
	Category   = product.Category
	CategoryID = product.CategoryID
	MenuItem   = product.MenuItem
	User       = product.User
)

// Listing filters and results.
type (
	FilterState = filter.State
	PriceRange  = filter.PriceRange
	SortBy      = sorting.SortBy
	SortOrder   = sorting.Order
	Page        = page.Result
)

// Sort fields and directions.
const (
	SortDefault      = sorting.Default
	SortProductName  = sorting.ProductName
	SortPrice        = sorting.Price
	SortRating       = sorting.Rating
	SortUserBuyCount = sorting.UserBuyCount
	SortCreated      = sorting.Created
	SortBestSeller   = sorting.BestSeller

	Asc  = sorting.Asc
	Desc = sorting.Desc
)

// Store state.
type (
	State      = store.State
	Pagination = store.Pagination
	Loading    = store.Loading
)

// ListingSnapshot is a point-in-time copy of a listing session.
type ListingSnapshot = listing.Snapshot

// Cart types.
type (
	CartItem     = cart.Item
	CartSummary  = cart.Summary
	CartAPI      = cartuc.API
	CartResponse = cartuc.Response
)

// DefaultFilters returns the filter state a listing starts from.
func DefaultFilters() FilterState { return filter.Default() }

// CartTotals computes line count, unit count and subtotal of a cart.
func CartTotals(items []CartItem) CartSummary { return cart.Totals(items) }
