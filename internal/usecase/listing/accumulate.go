package listing

import (
	"slices"

	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// AppendPage returns existing followed by the items of next that are not
// already present. Order is preserved and existing is never modified.
func AppendPage(existing, next []product.Product) []product.Product {
	seen := make(map[string]struct{}, len(existing)+len(next))
	for i := range existing {
		seen[existing[i].ProductID] = struct{}{}
	}

	out := slices.Clip(existing)
	for i := range next {
		id := next[i].ProductID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, next[i])
	}
	return out
}
