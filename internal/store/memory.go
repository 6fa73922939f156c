package store

import (
	"context"
	"sync"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

// Memory is an in-process store used in tests and when no database is
// configured. It implements both UserStore and QuoteStore.
//
// Records are copied on the way in and out so callers never alias
// stored state; a failed operation therefore cannot leak partial
// mutations into the store.
type Memory struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	quotes map[string]models.PriceEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[int64]models.User),
		quotes: make(map[string]models.PriceEntry),
	}
}

func copyUser(u models.User) *models.User {
	out := u
	out.Positions = make([]models.Position, len(u.Positions))
	copy(out.Positions, u.Positions)
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	if u.StreakRewardClaimed != nil {
		t := *u.StreakRewardClaimed
		out.StreakRewardClaimed = &t
	}
	return &out
}

// FindUser returns a copy of the stored user or ErrNotFound.
func (m *Memory) FindUser(_ context.Context, userID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

// UpsertUser stores a copy of user, replacing any existing record.
func (m *Memory) UpsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = *copyUser(*user)
	return nil
}

// DeleteUser removes the record for userID if present.
func (m *Memory) DeleteUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

// Find returns the cache entry for symbol or ErrNotFound.
func (m *Memory) Find(_ context.Context, symbol string) (models.PriceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.quotes[symbol]
	if !ok {
		return models.PriceEntry{}, ErrNotFound
	}
	return e, nil
}

// Upsert overwrites the cache entry for symbol.
func (m *Memory) Upsert(_ context.Context, symbol string, price float64, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = models.PriceEntry{Symbol: symbol, Price: price, Timestamp: ts}
	return nil
}

// FindBatch returns entries for the given symbols newer than fresherThan.
func (m *Memory) FindBatch(_ context.Context, symbols []string, fresherThan time.Time) ([]models.PriceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PriceEntry, 0, len(symbols))
	for _, s := range symbols {
		if e, ok := m.quotes[s]; ok && e.Timestamp.After(fresherThan) {
			out = append(out, e)
		}
	}
	return out, nil
}

var (
	_ UserStore  = (*Memory)(nil)
	_ QuoteStore = (*Memory)(nil)
)
