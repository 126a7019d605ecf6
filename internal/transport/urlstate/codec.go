// Package urlstate maps a listing's filter state to and from URL query
// parameters, so a reloaded or shared URL reconstructs the same listing.
package urlstate

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"unicode/utf8"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/sorting"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// Recognized query parameters.
const (
	ParamSearch    = "q"
	ParamFilters   = "filters"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamPage      = "page"
	ParamLimit     = "limit"
)

// wireFilters is the JSON carried in the filters parameter.
type wireFilters struct {
	PriceRange *wirePriceRange      `json:"priceRange,omitempty"`
	Categories []product.CategoryID `json:"categories,omitempty"`
	Ratings    []int                `json:"ratings,omitempty"`
	InStock    bool                 `json:"inStock,omitempty"`
	BestSeller bool                 `json:"bestSeller,omitempty"`
	HasOffer   bool                 `json:"hasOffer,omitempty"`
}

type wirePriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (w *wireFilters) isEmpty() bool {
	return w.PriceRange == nil && len(w.Categories) == 0 && len(w.Ratings) == 0 &&
		!w.InStock && !w.BestSeller && !w.HasOffer
}

// Codec encodes and decodes filter state. Decoding never fails: anything
// missing or malformed falls back to its default and is logged.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a codec. A nil logger disables warnings.
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// Encode writes s into query parameters. Parameters equal to their default are omitted.
func (c *Codec) Encode(s filter.State) url.Values {
	s = s.Normalize()
	def := filter.Default()
	v := url.Values{}

	if s.Search != "" {
		v.Set(ParamSearch, s.Search)
	}

	w := wireFilters{
		Categories: s.Categories,
		Ratings:    s.Ratings,
		InStock:    s.InStock,
		BestSeller: s.BestSeller,
		HasOffer:   s.HasOffer,
	}
	switch {
	case s.PriceRange == def.PriceRange:
	case !finite(s.PriceRange.Min) || !finite(s.PriceRange.Max):
		c.logger.Warn("non-finite price range not encoded",
			zap.Float64("min", s.PriceRange.Min), zap.Float64("max", s.PriceRange.Max))
	default:
		w.PriceRange = &wirePriceRange{Min: s.PriceRange.Min, Max: s.PriceRange.Max}
	}
	if !w.isEmpty() {
		data, err := json.Marshal(w)
		if err != nil {
			c.logger.Warn("encode filters", zap.Error(err))
		} else {
			v.Set(ParamFilters, string(data))
		}
	}

	if s.SortBy != def.SortBy {
		v.Set(ParamSortBy, string(s.SortBy))
	}
	if s.SortOrder != def.SortOrder {
		v.Set(ParamSortOrder, string(s.SortOrder))
	}
	return v
}

// EncodeString is Encode rendered as a query string (no leading '?').
func (c *Codec) EncodeString(s filter.State) string {
	return c.Encode(s).Encode()
}

// Decode rebuilds filter state from query parameters.
func (c *Codec) Decode(v url.Values) filter.State {
	s := filter.Default()
	s.Search = v.Get(ParamSearch)
	if len(s.Search) > filter.MaxSearchLength {
		c.logger.Warn("search parameter too long, truncating", zap.Int("length", len(s.Search)))
		n := filter.MaxSearchLength
		for n > 0 && !utf8.RuneStart(s.Search[n]) {
			n--
		}
		s.Search = s.Search[:n]
	}

	if raw := v.Get(ParamFilters); raw != "" {
		c.decodeFilters(raw, &s)
	}

	if by := sorting.SortBy(v.Get(ParamSortBy)); by != "" {
		if by.IsValid() {
			s.SortBy = by
		} else {
			c.logger.Warn("unknown sortBy, using default", zap.String("sortBy", string(by)))
		}
	}
	if order := sorting.Order(v.Get(ParamSortOrder)); order != "" {
		if order.IsValid() {
			s.SortOrder = order
		} else {
			c.logger.Warn("unknown sortOrder, using default", zap.String("sortOrder", string(order)))
		}
	}
	return s.Normalize()
}

// DecodeString parses a raw query string (with or without a leading '?').
func (c *Codec) DecodeString(raw string) filter.State {
	if len(raw) > 0 && raw[0] == '?' {
		raw = raw[1:]
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		c.logger.Warn("malformed query string, using defaults", zap.Error(err))
		return filter.Default()
	}
	return c.Decode(v)
}

func (c *Codec) decodeFilters(raw string, s *filter.State) {
	var w wireFilters
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		c.logger.Warn("malformed filters parameter, using defaults", zap.Error(err))
		return
	}

	if w.PriceRange != nil {
		pr := filter.PriceRange{Min: w.PriceRange.Min, Max: w.PriceRange.Max}
		if pr.Min >= 0 && pr.Min <= pr.Max {
			s.PriceRange = pr
		} else {
			c.logger.Warn("invalid price range, using default",
				zap.Float64("min", pr.Min), zap.Float64("max", pr.Max))
		}
	}

	s.Categories = w.Categories
	for _, r := range w.Ratings {
		if r < filter.MinRating || r > filter.MaxRating {
			c.logger.Warn("rating out of range, ignoring", zap.Int("rating", r))
			continue
		}
		s.Ratings = append(s.Ratings, r)
	}
	s.InStock = w.InStock
	s.BestSeller = w.BestSeller
	s.HasOffer = w.HasOffer
}

// PageFromValues reads page and limit. Missing values take page 1 and
// defaultLimit; limit is clamped to maxLimit. Non-numeric or out of range
// values are a validation error.
func PageFromValues(v url.Values, defaultLimit, maxLimit int) (page.Request, error) {
	p, limit := 1, defaultLimit
	if err := runtime.BindQueryParameter("form", true, false, ParamPage, v, &p); err != nil {
		return page.Request{}, fmt.Errorf("%w: page: %w", domain.ErrValidation, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, ParamLimit, v, &limit); err != nil {
		return page.Request{}, fmt.Errorf("%w: limit: %w", domain.ErrValidation, err)
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	req, err := page.NewRequest(p, limit)
	if err != nil {
		return page.Request{}, fmt.Errorf("parse page: %w", err)
	}
	return req, nil
}

// EncodePage adds page and limit parameters to v.
func EncodePage(v url.Values, req page.Request) {
	v.Set(ParamPage, fmt.Sprint(req.Page()))
	v.Set(ParamLimit, fmt.Sprint(req.Limit()))
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
