// Package rest is a catalog provider backed by a remote shopfront API.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	"github.com/kailas-cloud/shopfront/internal/transport/urlstate"
	"github.com/kailas-cloud/shopfront/internal/version"
)

// TenantHeader carries the tenant id on every request.
const TenantHeader = "X-Tenant-ID"

const maxErrorBody = 4 << 10

// Config holds the upstream endpoint settings. It is fixed for the
// lifetime of a Client.
type Config struct {
	BaseURL        string
	TenantID       string
	Timeout        time.Duration // per attempt
	MaxRetries     int
	InitialBackoff time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Client implements the catalog provider contract over HTTP.
type Client struct {
	cfg   Config
	base  *url.URL
	codec *urlstate.Codec
}

// New creates a client. BaseURL must be an absolute http(s) URL.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, domain.ErrValidation)
	}
	return &Client{cfg: cfg, base: u, codec: urlstate.NewCodec(cfg.Logger)}, nil
}

// FetchPage calls GET /products.
func (c *Client) FetchPage(ctx context.Context, f filter.State, req page.Request) (page.Result, error) {
	return c.fetch(ctx, "/products", f, req)
}

// FetchByCategory calls GET /categories/{id}/products. A 404 is reported
// as domain.ErrNotFound.
func (c *Client) FetchByCategory(
	ctx context.Context, id product.CategoryID, f filter.State, req page.Request,
) (page.Result, error) {
	return c.fetch(ctx, "/categories/"+strconv.Itoa(int(id))+"/products", f, req)
}

func (c *Client) fetch(ctx context.Context, path string, f filter.State, req page.Request) (page.Result, error) {
	q := c.codec.Encode(f)
	urlstate.EncodePage(q, req)

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()
	target := u.String()

	var (
		res     page.Result
		attempt int
	)
	op := func() error {
		attempt++
		var err error
		res, err = c.do(ctx, target)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.cfg.Logger.Debug("Retrying catalog request",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return page.Result{}, err
		}
		return page.Result{}, fmt.Errorf("%w: GET %s after %d attempt(s): %w",
			domain.ErrTransientFetch, path, attempt, err)
	}
	return res, nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)
}

// do performs one attempt. Errors that must not be retried are wrapped in
// backoff.Permanent.
func (c *Client) do(ctx context.Context, target string) (page.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return page.Result{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	c.setHeaders(req)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return page.Result{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return page.Result{}, backoff.Permanent(fmt.Errorf("%s: %w", readError(resp), domain.ErrNotFound))
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return page.Result{}, fmt.Errorf("upstream status %d: %s", resp.StatusCode, readError(resp))
	default:
		return page.Result{}, backoff.Permanent(
			fmt.Errorf("upstream status %d: %s", resp.StatusCode, readError(resp)))
	}

	var out page.Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return page.Result{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if out.Items == nil {
		out.Items = []product.Product{}
	}
	return out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.cfg.TenantID != "" {
		req.Header.Set(TenantHeader, c.cfg.TenantID)
	}
}

// readError extracts the message of an error response, falling back to the raw body.
func readError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// HealthCheck calls GET /health once, without retries.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	u := *c.base
	u.Path += "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upstream health: %w", domain.ErrTransientFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: upstream health status %d", domain.ErrTransientFetch, resp.StatusCode)
	}
	return nil
}
