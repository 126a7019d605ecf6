package domain

import "errors"

var (
	// ErrValidation signals malformed arguments (page, limit, filter bounds).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a category or product id that does not resolve.
	// Catalog queries treat it as an empty result rather than a failure.
	ErrNotFound = errors.New("not found")
	// ErrTransientFetch signals a recoverable catalog or cart provider failure.
	ErrTransientFetch = errors.New("transient fetch error")
	// ErrSuperseded signals that a newer query for the same slot was issued
	// before this one resolved; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer query")
	// ErrInvalidFilter signals a filter state that violates its invariants.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrCartRejected signals a cart API response with success=false.
	ErrCartRejected = errors.New("cart operation rejected")
)

// KeyPrefix namespaces every key shopfront writes to a shared key-value store.
const KeyPrefix = "shopfront:"
