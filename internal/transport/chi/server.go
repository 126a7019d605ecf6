package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domcart "github.com/kailas-cloud/shopfront/internal/domain/cart"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
	logpkg "github.com/kailas-cloud/shopfront/internal/logger"
	"github.com/kailas-cloud/shopfront/internal/transport/urlstate"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
	healthuc "github.com/kailas-cloud/shopfront/internal/usecase/health"
	"github.com/kailas-cloud/shopfront/internal/usecase/listing"
	"github.com/kailas-cloud/shopfront/internal/usecase/query"
	"github.com/kailas-cloud/shopfront/internal/usecase/store"
)

// SessionHeader identifies the shopper whose cart a request addresses.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// catalogIndex is the local catalog metadata the API serves (ISP).
type catalogIndex interface {
	Categories() []product.Category
	Menu() []product.MenuItem
	Facets() query.Facets
	Product(ctx context.Context, id string) (product.Product, error)
}

// cartBackend hands out session-scoped cart APIs.
type cartBackend interface {
	ForSession(id string) cartuc.API
}

// Config holds the pagination bounds of listing endpoints.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Server serves the storefront HTTP API.
type Server struct {
	products      listing.Provider
	catalog       catalogIndex
	carts         cartBackend
	health        *healthuc.Service
	codec         *urlstate.Codec
	cfg           Config
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	products listing.Provider,
	catalog catalogIndex,
	carts cartBackend,
	health *healthuc.Service,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = page.DefaultLimit
	}
	return &Server{
		products:      products,
		catalog:       catalog,
		carts:         carts,
		health:        health,
		codec:         urlstate.NewCodec(logger),
		cfg:           cfg,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts every route on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/products", s.ListProducts)
	r.Get("/categories", s.ListCategories)
	r.Get("/categories/{id}/products", s.ListCategoryProducts)
	r.Get("/filters", s.GetFilters)

	r.Route("/cart", func(r gochi.Router) {
		r.Use(requireSession)
		r.Get("/", s.GetCart)
		r.Delete("/", s.ClearCart)
		r.Post("/items", s.AddCartItem)
		r.Patch("/items/{productId}", s.UpdateCartItem)
		r.Delete("/items/{productId}", s.RemoveCartItem)
	})
}

// ListProducts handles GET /products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := urlstate.PageFromValues(q, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	// A search spans the whole catalog, as in a session.
	f := s.codec.Decode(q)
	f = f.WithSearch(f.Search)

	res, err := s.products.FetchPage(r.Context(), f, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListCategoryProducts handles GET /categories/{id}/products.
func (s *Server) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(gochi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "category id must be an integer")
		return
	}
	q := r.URL.Query()
	req, err := urlstate.PageFromValues(q, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	f := s.codec.Decode(q)

	res, err := s.products.FetchByCategory(r.Context(), product.CategoryID(id), f, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type categoriesResponse struct {
	Categories []product.Category `json:"categories"`
	Menu       []product.MenuItem `json:"menu"`
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	resp := categoriesResponse{Categories: s.catalog.Categories(), Menu: s.catalog.Menu()}
	if resp.Categories == nil {
		resp.Categories = []product.Category{}
	}
	if resp.Menu == nil {
		resp.Menu = []product.MenuItem{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFilters handles GET /filters.
func (s *Server) GetFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Facets())
}

// Health handles GET /health. A degraded service still answers 200.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// CartResponse is the cart as returned by every cart endpoint.
type CartResponse struct {
	Items   []domcart.Item  `json:"items"`
	Summary domcart.Summary `json:"summary"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /cart.
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	svc := s.cartService(r)
	items, err := svc.Load(r.Context())
	s.writeCart(w, r, items, err)
}

// ClearCart handles DELETE /cart.
func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	svc := s.cartService(r)
	items, err := svc.Clear(r.Context())
	s.writeCart(w, r, items, err)
}

// AddCartItem handles POST /cart/items.
func (s *Server) AddCartItem(w http.ResponseWriter, r *http.Request) {
	svc := s.cartService(r)
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	p, err := s.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := svc.Add(r.Context(), p, req.Quantity)
	s.writeCart(w, r, items, err)
}

// UpdateCartItem handles PATCH /cart/items/{productId}. Quantity 0 removes the line.
func (s *Server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	svc := s.cartService(r)
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	items, err := svc.UpdateQuantity(r.Context(), gochi.URLParam(r, "productId"), req.Quantity)
	s.writeCart(w, r, items, err)
}

// RemoveCartItem handles DELETE /cart/items/{productId}.
func (s *Server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	svc := s.cartService(r)
	items, err := svc.Remove(r.Context(), gochi.URLParam(r, "productId"))
	s.writeCart(w, r, items, err)
}

// requireSession rejects cart requests without a usable session id and tags
// the request logger with it.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(SessionHeader)
		if sid == "" || len(sid) > maxSessionIDLen {
			writeError(w, http.StatusBadRequest, CodeBadRequest,
				fmt.Sprintf("%s header is required (max %d chars)", SessionHeader, maxSessionIDLen))
			return
		}
		ctx := logpkg.WithFields(r.Context(), zap.String("session_id", sid))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cartService builds a cart service over the request's session and a
// request-scoped store.
func (s *Server) cartService(r *http.Request) *cartuc.Service {
	sid := r.Header.Get(SessionHeader)
	return cartuc.New(s.carts.ForSession(sid), store.New(), logpkg.FromContext(r.Context()))
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, items []domcart.Item, err error) {
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domcart.Item{}
	}
	writeJSON(w, http.StatusOK, CartResponse{Items: items, Summary: domcart.Totals(items)})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
