package listing

import (
	"context"

	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// Provider is the catalog collaborator. Both calls are idempotent for
// identical arguments. An unknown category may be reported as
// domain.ErrNotFound; the session treats that as an empty page.
type Provider interface {
	FetchPage(ctx context.Context, f filter.State, req page.Request) (page.Result, error)
	FetchByCategory(
		ctx context.Context, categoryID product.CategoryID, f filter.State, req page.Request,
	) (page.Result, error)
}

// Dispatcher receives the store actions a session emits.
type Dispatcher interface {
	Dispatch(a store.Action) store.State
}
