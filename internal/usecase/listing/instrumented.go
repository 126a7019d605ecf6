package listing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/metrics"
)

// InstrumentedProvider wraps a Provider with query metrics and debug logging.
type InstrumentedProvider struct {
	inner  Provider
	name   string
	logger *zap.Logger
}

// NewInstrumentedProvider wraps inner. name becomes the "provider" metric label.
func NewInstrumentedProvider(inner Provider, name string, logger *zap.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{inner: inner, name: name, logger: logger}
}

// FetchPage delegates to the inner provider and records the outcome.
func (p *InstrumentedProvider) FetchPage(
	ctx context.Context, f filter.State, req page.Request,
) (page.Result, error) {
	start := time.Now()
	res, err := p.inner.FetchPage(ctx, f, req)
	p.observe("page", start, req, res, err)
	return res, err //nolint:wrapcheck // decorator, caller sees the inner error
}

// FetchByCategory delegates to the inner provider and records the outcome.
func (p *InstrumentedProvider) FetchByCategory(
	ctx context.Context, categoryID product.CategoryID, f filter.State, req page.Request,
) (page.Result, error) {
	start := time.Now()
	res, err := p.inner.FetchByCategory(ctx, categoryID, f, req)
	p.observe("category", start, req, res, err)
	return res, err //nolint:wrapcheck // decorator, caller sees the inner error
}

func (p *InstrumentedProvider) observe(
	kind string, start time.Time, req page.Request, res page.Result, err error,
) {
	duration := time.Since(start)
	metrics.CatalogQueryDuration.WithLabelValues(p.name, kind).Observe(duration.Seconds())

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	metrics.CatalogQueriesTotal.WithLabelValues(p.name, kind, status).Inc()

	if err != nil && status == "error" {
		p.logger.Warn("Catalog query failed",
			zap.String("provider", p.name),
			zap.String("kind", kind),
			zap.Int("page", req.Page()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Catalog query completed",
		zap.String("provider", p.name),
		zap.String("kind", kind),
		zap.Int("page", req.Page()),
		zap.Int("items", len(res.Items)),
		zap.Int("total", res.Total),
		zap.Duration("duration", duration),
	)
}
