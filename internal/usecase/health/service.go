package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every checked component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentCartStore = "cart_store"
	ComponentCatalog   = "catalog"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	cartStore Pinger
	catalog   CatalogChecker
	timeout   time.Duration
}

// New creates a Service. Either dependency may be nil when the component
// lives in process memory and cannot fail independently.
func New(cartStore Pinger, catalog CatalogChecker) *Service {
	return &Service{cartStore: cartStore, catalog: catalog, timeout: defaultCheckTimeout}
}

// Check runs every configured check under a shared timeout.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checks := make(map[string]CheckResult)
	if s.cartStore != nil {
		checks[ComponentCartStore] = result(s.cartStore.Ping(ctx))
	}
	if s.catalog != nil {
		checks[ComponentCatalog] = result(s.catalog.HealthCheck(ctx))
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(checks):
		status = Unhealthy
	default:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
