package store

import (
	"github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Action is a closed set of state mutations. Every variant lives in this file.
type Action interface {
	isAction()
}

// SetUser replaces the signed-in user (nil signs out).
type SetUser struct{ User *product.User }

// SetProducts replaces the product list.
type SetProducts struct{ Products []product.Product }

// AppendProducts appends a page of products to the list.
type AppendProducts struct{ Products []product.Product }

// SetMenuItems replaces the navigation menu.
type SetMenuItems struct{ Items []product.MenuItem }

// SetCurrentCategory selects the category being browsed (nil clears it).
type SetCurrentCategory struct{ Category *product.Category }

// SetPagination replaces the pagination metadata of the product list.
type SetPagination struct{ Pagination Pagination }

// SetCart replaces the cart lines wholesale, e.g. after loading from the cart API.
type SetCart struct{ Items []cart.Item }

// AddToCart adds Quantity units of Product. ItemID is used only when a new
// line is created; the store fills it in when empty.
type AddToCart struct {
	Product  product.Product
	Quantity int
	ItemID   string
}

// RemoveFromCart drops the line holding ProductID.
type RemoveFromCart struct{ ProductID string }

// UpdateCartQuantity sets the quantity of the line holding ProductID.
// Callers turn quantities <= 0 into RemoveFromCart before dispatching.
type UpdateCartQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart empties the cart.
type ClearCart struct{}

// SetLoading sets the loading flag and the last transient error message.
type SetLoading struct{ Loading Loading }

func (SetUser) isAction()            {}
func (SetProducts) isAction()        {}
func (AppendProducts) isAction()     {}
func (SetMenuItems) isAction()       {}
func (SetCurrentCategory) isAction() {}
func (SetPagination) isAction()      {}
func (SetCart) isAction()            {}
func (AddToCart) isAction()          {}
func (RemoveFromCart) isAction()     {}
func (UpdateCartQuantity) isAction() {}
func (ClearCart) isAction()          {}
func (SetLoading) isAction()         {}
