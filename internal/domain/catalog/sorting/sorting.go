package sorting

import (
	"cmp"
	"strings"

	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// SortBy is the product field a listing is ordered by.
type SortBy string

// Sort field constants. Wire values match the storefront URL parameters.
const (
	// Default keeps the catalog's natural (insertion) order.
	Default      SortBy = "default"
	ProductName  SortBy = "productName"
	Price        SortBy = "price"
	Rating       SortBy = "rating"
	UserBuyCount SortBy = "userBuyCount"
	Created      SortBy = "created"
	BestSeller   SortBy = "best_seller"
)

// IsValid checks if the sort field is one of the supported values.
func (s SortBy) IsValid() bool {
	switch s {
	case Default, ProductName, Price, Rating, UserBuyCount, Created, BestSeller:
		return true
	}
	return false
}

// Order is the sort direction.
type Order string

// Sort direction constants.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the direction is asc or desc.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}

// Compare orders two products by the given field in ascending order.
// Default compares everything as equal so a stable sort keeps catalog order.
func Compare(by SortBy, a, b *product.Product) int {
	switch by {
	case ProductName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case Price:
		return cmp.Compare(a.Price, b.Price)
	case Rating:
		return cmp.Compare(a.Rating, b.Rating)
	case UserBuyCount:
		return cmp.Compare(a.UserBuyCount, b.UserBuyCount)
	case Created:
		return a.Created.Compare(b.Created)
	case BestSeller:
		return cmp.Compare(boolRank(a.BestSeller), boolRank(b.BestSeller))
	default:
		return 0
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
