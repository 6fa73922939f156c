// Package marketdata talks to the external price source. The core only
// depends on the Provider interface; the Yahoo client is the production
// implementation.
package marketdata

import (
	"context"
	"errors"
	"time"
)

// ErrNoData indicates the symbol is unknown or has no trading history.
var ErrNoData = errors.New("no price data available")

// Candle is one daily close.
type Candle struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Provider resolves spot prices and short daily-close histories.
type Provider interface {
	// CurrentPrice returns the latest market price for symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	// History returns up to lookbackDays most recent daily closes in
	// chronological order.
	History(ctx context.Context, symbol string, lookbackDays int) ([]Candle, error)
}
