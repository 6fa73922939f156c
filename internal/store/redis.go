package store

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

const quoteKeyPrefix = "quote:"

// RedisQuotes implements QuoteStore on Redis. Entries carry their own
// capture timestamp; the Redis key expiry only bounds cache growth and
// is set well above the freshness TTL enforced by the pricing layer.
type RedisQuotes struct {
	rdb       *goredis.Client
	retention time.Duration
}

// NewRedisQuotes returns a Redis-backed quote cache. retention is the
// key expiry; zero means keys never expire.
func NewRedisQuotes(rdb *goredis.Client, retention time.Duration) *RedisQuotes {
	return &RedisQuotes{rdb: rdb, retention: retention}
}

type redisQuote struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Find returns the cached quote for symbol or ErrNotFound.
func (r *RedisQuotes) Find(ctx context.Context, symbol string) (models.PriceEntry, error) {
	raw, err := r.rdb.Get(ctx, quoteKeyPrefix+symbol).Bytes()
	if err == goredis.Nil {
		return models.PriceEntry{}, ErrNotFound
	}
	if err != nil {
		return models.PriceEntry{}, err
	}
	var q redisQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		return models.PriceEntry{}, err
	}
	return models.PriceEntry{Symbol: symbol, Price: q.Price, Timestamp: q.Timestamp}, nil
}

// Upsert overwrites the cached quote for symbol.
func (r *RedisQuotes) Upsert(ctx context.Context, symbol string, price float64, ts time.Time) error {
	raw, err := json.Marshal(redisQuote{Price: price, Timestamp: ts})
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, quoteKeyPrefix+symbol, raw, r.retention).Err()
}

// FindBatch fetches all symbols in one MGET and filters by freshness.
func (r *RedisQuotes) FindBatch(ctx context.Context, symbols []string, fresherThan time.Time) ([]models.PriceEntry, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	keys := make([]string, len(symbols))
	for i, s := range symbols {
		keys[i] = quoteKeyPrefix + s
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var out []models.PriceEntry
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // missing key
		}
		var q redisQuote
		if err := json.Unmarshal([]byte(s), &q); err != nil {
			continue
		}
		if q.Timestamp.After(fresherThan) {
			out = append(out, models.PriceEntry{Symbol: symbols[i], Price: q.Price, Timestamp: q.Timestamp})
		}
	}
	return out, nil
}

var _ QuoteStore = (*RedisQuotes)(nil)
