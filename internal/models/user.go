package models

import "time"

// DefaultStartingBalance is the cash every new user starts with.
const DefaultStartingBalance = 10000.00

// MinShareQuantity is the smallest tradable share unit. Positions that
// fall below it are removed from the portfolio.
const MinShareQuantity = 0.01

// User is the single persistent record per user: cash balance, open
// positions and login-streak state. Positions keep insertion order and
// hold at most one entry per symbol.
type User struct {
	UserID              int64      `json:"user_id"`
	CashBalance         float64    `json:"cash_balance"`
	Positions           []Position `json:"positions"`
	Streak              int        `json:"streak"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	StreakRewardClaimed *time.Time `json:"streak_reward_claimed,omitempty"`
}

// Position is a user's holding in one ticker symbol.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
}

// NewUser returns a fresh user record with the starting balance and an
// empty portfolio.
func NewUser(userID int64) *User {
	return &User{
		UserID:      userID,
		CashBalance: DefaultStartingBalance,
		Positions:   []Position{},
	}
}

// FindPosition returns a pointer to the position for symbol, or nil if
// the user does not hold it.
func (u *User) FindPosition(symbol string) *Position {
	for i := range u.Positions {
		if u.Positions[i].Symbol == symbol {
			return &u.Positions[i]
		}
	}
	return nil
}

// RemovePosition drops the position for symbol, preserving the order of
// the remaining positions.
func (u *User) RemovePosition(symbol string) {
	for i := range u.Positions {
		if u.Positions[i].Symbol == symbol {
			u.Positions = append(u.Positions[:i], u.Positions[i+1:]...)
			return
		}
	}
}

// PriceEntry is one cached quote: at most one entry exists per symbol
// and it is overwritten in place on refresh.
type PriceEntry struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Fresh reports whether the entry is younger than maxAge relative to now.
func (e PriceEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.Timestamp) < maxAge
}
