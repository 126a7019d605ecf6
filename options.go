package shopfront

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	endpoint   string
	tenantID   string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	products   []Product
	categories []Category
	sample     bool

	pageSize int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithEndpoint reads the catalog from a remote shopfront API.
func WithEndpoint(baseURL, tenantID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = baseURL
		c.tenantID = tenantID
	})
}

// WithRetries sets how often a failed remote catalog request is retried and
// the first backoff interval. Only used with WithEndpoint.
func WithRetries(maxRetries int, initialBackoff time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.backoff = initialBackoff
	})
}

// WithTimeout bounds every remote catalog request. Only used with WithEndpoint.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithCatalog serves listings from an in-process product snapshot.
func WithCatalog(products []Product, categories []Category) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = products
		c.categories = categories
	})
}

// WithSampleCatalog serves listings from the built-in demo catalog.
func WithSampleCatalog() Option {
	return optionFunc(func(c *clientConfig) {
		c.sample = true
	})
}

// WithPageSize sets how many products a listing loads per page.
// Default: 20.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations and
// discarded stale results) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
