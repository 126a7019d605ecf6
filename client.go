package shopfront

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	cartrepo "github.com/kailas-cloud/shopfront/internal/repository/cart"
	catalogrepo "github.com/kailas-cloud/shopfront/internal/repository/catalog"
	"github.com/kailas-cloud/shopfront/internal/transport/rest"
	"github.com/kailas-cloud/shopfront/internal/transport/urlstate"
	"github.com/kailas-cloud/shopfront/internal/usecase/listing"
)

// Client is the shopfront SDK entry point. It is safe for concurrent use;
// every Listing it hands out has its own state.
type Client struct {
	provider listing.Provider
	catalog  *catalogrepo.Repo // nil for a remote catalog
	pageSize int
	codec    *urlstate.Codec
	obs      *observer
}

// New creates a Client. One of WithEndpoint, WithCatalog or
// WithSampleCatalog is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{pageSize: page.DefaultLimit}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		pageSize: cfg.pageSize,
		codec:    urlstate.NewCodec(obs.logger),
		obs:      obs,
	}

	switch {
	case cfg.endpoint != "":
		rc, err := rest.New(rest.Config{
			BaseURL:        cfg.endpoint,
			TenantID:       cfg.tenantID,
			Timeout:        cfg.timeout,
			MaxRetries:     cfg.maxRetries,
			InitialBackoff: cfg.backoff,
			Logger:         obs.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("shopfront: %w", err)
		}
		c.provider = rc
	case cfg.sample:
		c.catalog = catalogrepo.New(catalogrepo.Sample(), catalogrepo.WithLogger(obs.logger))
		c.provider = c.catalog
	case len(cfg.products) > 0:
		c.catalog = catalogrepo.New(catalogrepo.Snapshot{
			Categories: cfg.categories,
			Products:   cfg.products,
		}, catalogrepo.WithLogger(obs.logger))
		c.provider = c.catalog
	default:
		return nil, errors.New("shopfront: catalog required (use WithEndpoint, WithCatalog or WithSampleCatalog)")
	}
	return c, nil
}

// Listing starts a new storefront session: a fresh state store with a
// listing bound to it. Nothing is loaded until the first Apply or Search.
func (c *Client) Listing() *Storefront {
	return newStorefront(c)
}

// Categories returns the local catalog's categories, nil for a remote catalog.
func (c *Client) Categories() []Category {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Categories()
}

// EncodeFilters renders a filter state as a URL query string.
func (c *Client) EncodeFilters(f FilterState) string {
	return c.codec.EncodeString(f)
}

// ParseFilters rebuilds a filter state from a URL query string. Malformed
// input falls back to defaults and never fails.
func (c *Client) ParseFilters(rawQuery string) FilterState {
	return c.codec.DecodeString(rawQuery)
}

// NewMemoryCart returns an in-process cart API for a single shopper.
func NewMemoryCart() CartAPI {
	return cartrepo.NewMemory().ForSession("local")
}
