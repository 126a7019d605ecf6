// Package product holds the catalog entities shared by the query, listing and cart layers.
package product

import "time"

// CategoryID identifies a catalog category.
type CategoryID int

// Product is a catalog item. The filter subsystem never mutates it.
type Product struct {
	ProductID    string     `json:"productId"`
	Name         string     `json:"productName"`
	Description  string     `json:"description,omitempty"`
	Price        float64    `json:"price"`
	Rating       float64    `json:"rating"`
	Category     CategoryID `json:"category"`
	InStock      bool       `json:"inStock"`
	BestSeller   bool       `json:"bestSeller"`
	Offer        string     `json:"offer,omitempty"`
	Created      time.Time  `json:"created"`
	UserBuyCount int        `json:"userBuyCount"`
	ImageURL     string     `json:"imageUrl,omitempty"`
}

// HasOffer reports whether the product carries a non-empty offer label.
func (p *Product) HasOffer() bool { return p.Offer != "" }

// Category is a node of the category tree.
type Category struct {
	ID       CategoryID  `json:"id"`
	Name     string      `json:"name"`
	ParentID *CategoryID `json:"parentId,omitempty"`
}

// MenuItem is a navigation entry, usually pointing at a category listing.
type MenuItem struct {
	Label      string      `json:"label"`
	Path       string      `json:"path"`
	CategoryID *CategoryID `json:"categoryId,omitempty"`
}

// User is the signed-in shopper, as far as the storefront state is concerned.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}
