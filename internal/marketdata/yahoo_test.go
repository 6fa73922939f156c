package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*YahooClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &YahooClient{BaseURL: srv.URL, HTTP: srv.Client()}, srv
}

func chartJSON(price float64, timestamps []int64, closes []string) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += c
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"regularMarketPrice": %.2f},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s]}]}
			}],
			"error": null
		}
	}`, price, ts, cl)
}

func TestCurrentPrice_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("expected daily interval, got %q", r.URL.Query().Get("interval"))
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent header")
		}
		fmt.Fprint(w, chartJSON(189.84, []int64{1700000000}, []string{"189.84"}))
	})
	defer srv.Close()

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CurrentPrice failed: %v", err)
	}
	if price != 189.84 {
		t.Errorf("expected 189.84, got %.2f", price)
	}
}

func TestCurrentPrice_UnknownSymbol(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.CurrentPrice(context.Background(), "NOPE")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCurrentPrice_ChartError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`)
	})
	defer srv.Close()

	_, err := client.CurrentPrice(context.Background(), "NOPE")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCurrentPrice_ZeroPriceRejected(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(0, []int64{1700000000}, []string{"null"}))
	})
	defer srv.Close()

	_, err := client.CurrentPrice(context.Background(), "HALTED")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCurrentPrice_ServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := client.CurrentPrice(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if errors.Is(err, ErrNoData) {
		t.Errorf("rate limiting must not look like missing data: %v", err)
	}
}

func TestHistory_SkipsNullCloses(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(155.00,
			[]int64{1700000000, 1700086400, 1700172800},
			[]string{"150.00", "null", "155.00"}))
	})
	defer srv.Close()

	candles, err := client.History(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 150.00 || candles[1].Close != 155.00 {
		t.Errorf("unexpected closes: %+v", candles)
	}
	if !candles[0].Date.Before(candles[1].Date) {
		t.Error("expected chronological order")
	}
}

func TestHistory_TrimsToLookback(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(104.00,
			[]int64{1700000000, 1700086400, 1700172800, 1700259200, 1700345600},
			[]string{"100.00", "101.00", "102.00", "103.00", "104.00"}))
	})
	defer srv.Close()

	candles, err := client.History(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected trim to 2 candles, got %d", len(candles))
	}
	// The most recent closes win.
	if candles[0].Close != 103.00 || candles[1].Close != 104.00 {
		t.Errorf("expected the newest closes, got %+v", candles)
	}
}

func TestHistory_AllNullCloses(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(100.00,
			[]int64{1700000000, 1700086400},
			[]string{"null", "null"}))
	})
	defer srv.Close()

	_, err := client.History(context.Background(), "AAPL", 2)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
