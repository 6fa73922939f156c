package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/marketdata"
	"github.com/atharvakonge/paper-trading-api/internal/store"
)

// countingProvider tracks how often the external source is consulted so
// cache behavior can be asserted.
type countingProvider struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func newCountingProvider() *countingProvider {
	return &countingProvider{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (p *countingProvider) setPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
	delete(p.errs, symbol)
}

func (p *countingProvider) setError(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[symbol] = err
}

func (p *countingProvider) callCount(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[symbol]
}

func (p *countingProvider) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[symbol]++
	if err, ok := p.errs[symbol]; ok {
		return 0, err
	}
	price, ok := p.prices[symbol]
	if !ok {
		return 0, errors.New("no quote")
	}
	return price, nil
}

func (p *countingProvider) History(_ context.Context, _ string, _ int) ([]marketdata.Candle, error) {
	return nil, errors.New("not implemented")
}

func TestGetPrice_CachesWithinWindow(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	base := time.Now()
	svc.Now = func() time.Time { return base }

	price, err := svc.GetPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if price != 150.00 {
		t.Errorf("expected 150.00, got %.2f", price)
	}

	// A new source price within the window must not be visible.
	source.setPrice("AAPL", 999.00)
	svc.Now = func() time.Time { return base.Add(29 * time.Second) }

	price, err = svc.GetPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if price != 150.00 {
		t.Errorf("expected cached 150.00 within window, got %.2f", price)
	}
	if got := source.callCount("AAPL"); got != 1 {
		t.Errorf("expected 1 source call, got %d", got)
	}
}

func TestGetPrice_RefreshesAfterExpiry(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	base := time.Now()
	svc.Now = func() time.Time { return base }
	if _, err := svc.GetPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	source.setPrice("AAPL", 155.00)
	svc.Now = func() time.Time { return base.Add(31 * time.Second) }

	price, err := svc.GetPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if price != 155.00 {
		t.Errorf("expected refreshed 155.00, got %.2f", price)
	}
	if got := source.callCount("AAPL"); got != 2 {
		t.Errorf("expected 2 source calls, got %d", got)
	}
}

func TestGetPrice_NormalizesSymbol(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	if _, err := svc.GetPrice(context.Background(), "  aapl "); err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	// Second spelling hits the same cache entry.
	if _, err := svc.GetPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if got := source.callCount("AAPL"); got != 1 {
		t.Errorf("expected 1 source call after normalization, got %d", got)
	}
}

func TestGetPrice_FailureLeavesStaleEntry(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	base := time.Now()
	svc.Now = func() time.Time { return base }
	if _, err := svc.GetPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	source.setError("AAPL", errors.New("upstream down"))
	svc.Now = func() time.Time { return base.Add(time.Minute) }

	_, err := svc.GetPrice(context.Background(), "AAPL")
	var unavailable *PriceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected PriceUnavailableError, got %v", err)
	}
	if unavailable.Error() != "Error fetching price for AAPL: upstream down" {
		t.Errorf("unexpected message: %q", unavailable.Error())
	}

	// The stale entry survives the failed refresh.
	entry, findErr := mem.Find(context.Background(), "AAPL")
	if findErr != nil {
		t.Fatalf("stale entry gone: %v", findErr)
	}
	if entry.Price != 150.00 {
		t.Errorf("stale entry overwritten: %.2f", entry.Price)
	}
}

func TestGetPrices_BatchWithPerSymbolErrors(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	source.setPrice("MSFT", 300.00)
	source.setError("GONE", errors.New("delisted"))
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	prices, errs := svc.GetPrices(context.Background(), []string{"aapl", "MSFT", "GONE"})
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %v", prices)
	}
	if prices["AAPL"] != 150.00 || prices["MSFT"] != 300.00 {
		t.Errorf("unexpected prices: %v", prices)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs["GONE"] != "Error fetching price for GONE: delisted" {
		t.Errorf("unexpected error message: %q", errs["GONE"])
	}
}

func TestGetPrices_SecondBatchServedFromCache(t *testing.T) {
	mem := store.NewMemory()
	source := newCountingProvider()
	source.setPrice("AAPL", 150.00)
	source.setPrice("MSFT", 300.00)
	svc := NewWithMaxAge(mem, source, 30*time.Second)

	base := time.Now()
	svc.Now = func() time.Time { return base }

	symbols := []string{"AAPL", "MSFT"}
	if prices, _ := svc.GetPrices(context.Background(), symbols); len(prices) != 2 {
		t.Fatalf("first batch incomplete: %v", prices)
	}

	svc.Now = func() time.Time { return base.Add(10 * time.Second) }
	if prices, _ := svc.GetPrices(context.Background(), symbols); len(prices) != 2 {
		t.Fatalf("second batch incomplete: %v", prices)
	}
	if a, m := source.callCount("AAPL"), source.callCount("MSFT"); a != 1 || m != 1 {
		t.Errorf("expected 1 source call each, got AAPL=%d MSFT=%d", a, m)
	}
}

func TestGetPrices_EmptyBatch(t *testing.T) {
	mem := store.NewMemory()
	svc := NewWithMaxAge(mem, newCountingProvider(), 30*time.Second)

	prices, errs := svc.GetPrices(context.Background(), nil)
	if prices == nil || errs == nil {
		t.Fatal("expected non-nil maps for an empty batch")
	}
	if len(prices) != 0 || len(errs) != 0 {
		t.Errorf("expected empty maps, got %v / %v", prices, errs)
	}
}
