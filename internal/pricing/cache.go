// Package pricing serves market prices through a TTL cache backed by a
// QuoteStore, delegating to the external source only on cache misses.
package pricing

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/marketdata"
	"github.com/atharvakonge/paper-trading-api/internal/metrics"
	"github.com/atharvakonge/paper-trading-api/internal/store"
)

// DefaultMaxAge is the freshness window for live trading prices.
const DefaultMaxAge = 30 * time.Second

// PriceUnavailableError reports that no price could be resolved for a
// symbol. Any stale cache entry is left untouched.
type PriceUnavailableError struct {
	Symbol string
	Reason string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("Error fetching price for %s: %s", e.Symbol, e.Reason)
}

// Service resolves prices with cache-first semantics. Concurrent misses
// for the same symbol may both hit the source; the resulting overwrite
// is idempotent.
type Service struct {
	quotes store.QuoteStore
	source marketdata.Provider
	maxAge time.Duration

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// New returns a pricing service with the default 30s freshness window.
func New(quotes store.QuoteStore, source marketdata.Provider) *Service {
	return NewWithMaxAge(quotes, source, DefaultMaxAge)
}

// NewWithMaxAge returns a pricing service with a custom freshness window.
func NewWithMaxAge(quotes store.QuoteStore, source marketdata.Provider, maxAge time.Duration) *Service {
	return &Service{
		quotes: quotes,
		source: source,
		maxAge: maxAge,
		Now:    time.Now,
	}
}

// Normalize canonicalizes a ticker symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetPrice returns the cached price for symbol while it is fresh,
// otherwise fetches from the source, updates the cache and returns the
// fresh price.
func (s *Service) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = Normalize(symbol)
	now := s.Now()

	if entry, err := s.quotes.Find(ctx, symbol); err == nil && entry.Fresh(now, s.maxAge) {
		metrics.QuoteCacheHits.Inc()
		return entry.Price, nil
	}
	metrics.QuoteCacheMisses.Inc()

	price, err := s.source.CurrentPrice(ctx, symbol)
	if err != nil {
		metrics.QuoteFetchErrors.Inc()
		return 0, &PriceUnavailableError{Symbol: symbol, Reason: err.Error()}
	}

	// A failed cache write must not fail the lookup.
	if err := s.quotes.Upsert(ctx, symbol, price, now); err != nil {
		log.Printf("quote cache write failed for %s: %v", symbol, err)
	}
	return price, nil
}

// GetPrices resolves a batch of symbols. Symbols already fresh in the
// cache are served without an external call; the remainder resolve
// individually. Per-symbol failures populate the error map instead of
// aborting the batch, so both returned maps are always well formed.
func (s *Service) GetPrices(ctx context.Context, symbols []string) (map[string]float64, map[string]string) {
	prices := make(map[string]float64, len(symbols))
	errs := make(map[string]string)

	normalized := make([]string, len(symbols))
	for i, sym := range symbols {
		normalized[i] = Normalize(sym)
	}

	now := s.Now()
	cached := make(map[string]float64)
	entries, err := s.quotes.FindBatch(ctx, normalized, now.Add(-s.maxAge))
	if err != nil {
		log.Printf("quote cache batch read failed: %v", err)
	} else {
		for _, e := range entries {
			cached[e.Symbol] = e.Price
		}
	}

	for _, sym := range normalized {
		if price, ok := cached[sym]; ok {
			metrics.QuoteCacheHits.Inc()
			prices[sym] = price
			continue
		}
		price, err := s.GetPrice(ctx, sym)
		if err != nil {
			errs[sym] = err.Error()
			continue
		}
		prices[sym] = price
	}
	return prices, errs
}
