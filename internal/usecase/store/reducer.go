package store

import (
	"slices"

	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Pagination is the metadata of the current product list.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
}

// Loading is the in-flight flag plus the last transient error, if any.
type Loading struct {
	Active bool   `json:"active"`
	Error  string `json:"error,omitempty"`
}

// State is the whole storefront context.
type State struct {
	User            *product.User      `json:"user,omitempty"`
	Cart            []cart.Item        `json:"cart"`
	Products        []product.Product  `json:"products"`
	MenuItems       []product.MenuItem `json:"menuItems"`
	CurrentCategory *product.Category  `json:"currentCategory,omitempty"`
	Pagination      Pagination         `json:"pagination"`
	Loading         Loading            `json:"loading"`
}

// Reduce returns the state after applying a. It never mutates s: slices are
// copied before they change, so earlier snapshots stay valid.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetUser:
		s.User = a.User
	case SetProducts:
		s.Products = slices.Clone(a.Products)
	case AppendProducts:
		s.Products = append(slices.Clip(s.Products), a.Products...)
	case SetMenuItems:
		s.MenuItems = slices.Clone(a.Items)
	case SetCurrentCategory:
		s.CurrentCategory = a.Category
	case SetPagination:
		s.Pagination = a.Pagination
	case SetCart:
		s.Cart = slices.Clone(a.Items)
	case AddToCart:
		s.Cart = cart.Add(s.Cart, a.Product, a.Quantity, a.ItemID)
	case RemoveFromCart:
		s.Cart = cart.Remove(s.Cart, a.ProductID)
	case UpdateCartQuantity:
		s.Cart = cart.SetQuantity(s.Cart, a.ProductID, a.Quantity)
	case ClearCart:
		s.Cart = nil
	case SetLoading:
		s.Loading = a.Loading
	}
	return s
}
