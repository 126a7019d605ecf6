package shopfront

import "github.com/kailas-cloud/shopfront/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation     = domain.ErrValidation
	ErrNotFound       = domain.ErrNotFound
	ErrTransientFetch = domain.ErrTransientFetch
	ErrSuperseded     = domain.ErrSuperseded
	ErrInvalidFilter  = domain.ErrInvalidFilter
	ErrCartRejected   = domain.ErrCartRejected
)
