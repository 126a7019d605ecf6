// Package shopfront is the storefront client core: product listing with
// filters, sorting and infinite-scroll pagination, plus a cart kept in a
// single state store.
//
// # Listing
//
//	client, _ := shopfront.New(shopfront.WithSampleCatalog(), shopfront.WithPageSize(12))
//	sf := client.Listing()
//	_ = sf.Search(ctx, "phone")
//	_ = sf.LoadMore(ctx)
//	fmt.Println(sf.State().Products)
//
// A filter change always reloads from page 1. Results of queries that were
// overtaken by a newer one are dropped and reported as ErrSuperseded.
//
// # Cart
//
//	cart := sf.Cart(shopfront.NewMemoryCart())
//	_, _ = cart.Add(ctx, product, 2)
//
// # Remote catalog
//
//	client, _ := shopfront.New(shopfront.WithEndpoint("https://shop.example.com/api", "tenant-1"))
package shopfront
