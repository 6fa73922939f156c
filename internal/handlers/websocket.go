package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/atharvakonge/paper-trading-api/internal/pricing"
)

// PriceUpdate is one pushed quote.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Timestamp time.Time `json:"timestamp"`
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

var defaultWatchlist = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN"}

// StreamPrices handles GET /ws/prices. It pushes cache-served quotes
// for the requested watchlist (?symbols=AAPL,MSFT) on a fixed interval;
// the change field is relative to the previous push for that symbol.
func (a *API) StreamPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	symbols := defaultWatchlist
	if raw := c.Query("symbols"); raw != "" {
		symbols = nil
		for _, s := range strings.Split(raw, ",") {
			if sym := pricing.Normalize(s); sym != "" {
				symbols = append(symbols, sym)
			}
		}
	}
	if len(symbols) == 0 {
		return
	}

	lastSent := make(map[string]float64)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prices, errs := a.Prices.GetPrices(ctx, symbols)
			for sym, reason := range errs {
				log.Printf("price stream: %s unavailable: %s", sym, reason)
			}

			for _, sym := range symbols {
				price, ok := prices[sym]
				if !ok {
					continue
				}
				var change float64
				if prev, ok := lastSent[sym]; ok && prev > 0 {
					change = (price - prev) / prev * 100
				}
				lastSent[sym] = price

				update := PriceUpdate{
					Symbol:    sym,
					Price:     price,
					Change:    change,
					Timestamp: time.Now(),
				}
				if err := conn.WriteJSON(update); err != nil {
					log.Println("WebSocket write error:", err)
					return
				}
			}
		}
	}
}
