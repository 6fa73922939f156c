package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches quotes from the Yahoo Finance chart API.
type YahooClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewYahooClient returns a client against the public Yahoo endpoint.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		BaseURL: defaultYahooBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	params := url.Values{
		"range":    {rng},
		"interval": {"1d"},
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; paper-trading-api/1.0)")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, symbol)
	}

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding chart response for %s: %w", symbol, err)
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoData, symbol, data.Chart.Error.Code)
	}
	if len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return &data, nil
}

// CurrentPrice returns the latest market price for symbol.
func (c *YahooClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	data, err := c.fetchChart(ctx, symbol, "1d")
	if err != nil {
		return 0, err
	}
	price := data.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return price, nil
}

// History returns up to lookbackDays most recent daily closes, oldest
// first. Null closes (market holidays, partial sessions) are skipped.
func (c *YahooClient) History(ctx context.Context, symbol string, lookbackDays int) ([]Candle, error) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	// Request a wider range so weekends and holidays still leave
	// enough trading days to satisfy the lookback.
	data, err := c.fetchChart(ctx, symbol, fmt.Sprintf("%dd", lookbackDays+3))
	if err != nil {
		return nil, err
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	closes := result.Indicators.Quote[0].Close

	var candles []Candle
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		candles = append(candles, Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if len(candles) > lookbackDays {
		candles = candles[len(candles)-lookbackDays:]
	}
	return candles, nil
}

var _ Provider = (*YahooClient)(nil)
