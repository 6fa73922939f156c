// Package store defines the persistence contracts for user records and
// the quote cache, with Postgres, Redis and in-memory implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// UserStore persists one record per user_id. The store is the sole
// owner of the record; callers read a copy and write it back whole
// (single logical write per operation).
type UserStore interface {
	FindUser(ctx context.Context, userID int64) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	// DeleteUser exists for tests and administration; the core never
	// deletes users.
	DeleteUser(ctx context.Context, userID int64) error
}

// QuoteStore persists the per-symbol price cache. Upsert overwrites in
// place so at most one entry exists per symbol; concurrent overwrites
// are last-write-wins.
type QuoteStore interface {
	Find(ctx context.Context, symbol string) (models.PriceEntry, error)
	Upsert(ctx context.Context, symbol string, price float64, ts time.Time) error
	// FindBatch returns the entries among symbols whose timestamp is
	// strictly newer than fresherThan. Missing or stale symbols are
	// simply absent from the result.
	FindBatch(ctx context.Context, symbols []string, fresherThan time.Time) ([]models.PriceEntry, error)
}
