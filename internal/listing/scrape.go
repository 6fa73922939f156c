package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const constituentsURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// ScrapeTickers pulls the current S&P 500 constituents table from
// Wikipedia and writes the symbols to outPath, one per line. Only
// needed to refresh the checked-in ticker universe.
func ScrapeTickers(ctx context.Context, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, constituentsURL, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	tickers, err := parseConstituents(resp.Body)
	if err != nil {
		return err
	}

	return os.WriteFile(outPath, []byte(strings.Join(tickers, "\n")+"\n"), 0o644)
}

func parseConstituents(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var tickers []string
	doc.Find("table#constituents tbody tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		ticker := strings.TrimSpace(row.Find("td").First().Text())
		if ticker != "" {
			tickers = append(tickers, ticker)
		}
	})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found in constituents table")
	}
	return tickers, nil
}
