// Package metrics registers the Prometheus instruments exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesTotal counts executed trades by side (buy|sell).
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_trades_total",
		Help: "Trades executed, by side",
	}, []string{"side"})

	// TradeFailures counts rejected trades by side.
	TradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrader_trade_failures_total",
		Help: "Trades rejected by the trading engine, by side",
	}, []string{"side"})

	// QuoteCacheHits counts price lookups served from the cache.
	QuoteCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_quote_cache_hits_total",
		Help: "Price lookups served from the quote cache",
	})

	// QuoteCacheMisses counts price lookups that went to the source.
	QuoteCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_quote_cache_misses_total",
		Help: "Price lookups that required an external fetch",
	})

	// QuoteFetchErrors counts failed external price fetches.
	QuoteFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_quote_fetch_errors_total",
		Help: "External price fetches that failed",
	})

	// StreakRewards counts granted daily login rewards.
	StreakRewards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "papertrader_streak_rewards_total",
		Help: "Daily login rewards granted",
	})
)
