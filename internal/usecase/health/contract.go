package health

import "context"

// Pinger checks cart store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogChecker checks catalog provider availability.
type CatalogChecker interface {
	HealthCheck(ctx context.Context) error
}
