// Package listing serves paginated S&P 500 quote pages behind a
// bounded, page-keyed TTL cache. This sits outside the trading core and
// resolves its prices through the pricing batch call.
package listing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPerPage is the number of tickers per page.
	DefaultPerPage = 10
	// PageCacheTTL is how long a fetched page stays servable.
	PageCacheTTL = 300 * time.Second
	// maxCachedPages bounds the page cache.
	maxCachedPages = 64
)

// PriceBatcher is the slice of the pricing service the listing needs.
type PriceBatcher interface {
	GetPrices(ctx context.Context, symbols []string) (map[string]float64, map[string]string)
}

// Page is one paginated chunk of listing data.
type Page struct {
	Data       map[string]float64 `json:"data"`
	Errors     map[string]string  `json:"errors,omitempty"`
	TotalPages int                `json:"total_pages"`
	Current    int                `json:"current_page"`
}

type cachedPage struct {
	page Page
	ts   time.Time
}

// Service paginates the ticker universe read from a file.
type Service struct {
	tickersFile string
	prices      PriceBatcher
	perPage     int

	mu    sync.Mutex
	cache map[int]cachedPage

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// New returns a listing service reading tickers from tickersFile.
func New(tickersFile string, prices PriceBatcher) *Service {
	return &Service{
		tickersFile: tickersFile,
		prices:      prices,
		perPage:     DefaultPerPage,
		cache:       make(map[int]cachedPage),
		Now:         time.Now,
	}
}

// ReadTickers loads the ticker universe, one symbol per line.
func ReadTickers(filename string) ([]string, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading tickers file: %w", err)
	}
	var tickers []string
	for _, line := range strings.Split(string(raw), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers, nil
}

// FetchPage returns one page of ticker prices. An out-of-range page
// yields an empty page with zero total pages rather than an error.
func (s *Service) FetchPage(ctx context.Context, page int) (Page, error) {
	tickers, err := ReadTickers(s.tickersFile)
	if err != nil {
		return Page{}, err
	}
	totalPages := (len(tickers) + s.perPage - 1) / s.perPage

	if page < 1 || page > totalPages {
		return Page{Data: map[string]float64{}, Current: page}, nil
	}

	now := s.Now()

	s.mu.Lock()
	if cached, ok := s.cache[page]; ok && now.Sub(cached.ts) < PageCacheTTL {
		s.mu.Unlock()
		return cached.page, nil
	}
	s.mu.Unlock()

	start := (page - 1) * s.perPage
	end := start + s.perPage
	if end > len(tickers) {
		end = len(tickers)
	}

	prices, errs := s.prices.GetPrices(ctx, tickers[start:end])
	result := Page{
		Data:       prices,
		Errors:     errs,
		TotalPages: totalPages,
		Current:    page,
	}

	s.mu.Lock()
	s.evictLocked(now)
	s.cache[page] = cachedPage{page: result, ts: now}
	s.mu.Unlock()

	return result, nil
}

// evictLocked drops expired entries and, if the cache is still at
// capacity, the oldest one. Caller holds s.mu.
func (s *Service) evictLocked(now time.Time) {
	for p, c := range s.cache {
		if now.Sub(c.ts) >= PageCacheTTL {
			delete(s.cache, p)
		}
	}
	if len(s.cache) < maxCachedPages {
		return
	}
	oldestPage, oldestTS := 0, now
	for p, c := range s.cache {
		if c.ts.Before(oldestTS) {
			oldestPage, oldestTS = p, c.ts
		}
	}
	delete(s.cache, oldestPage)
}
