package trading

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound means no record exists for the user id.
	ErrUserNotFound = errors.New("User not found")
	// ErrInsufficientFunds means the buy amount exceeds the cash balance.
	ErrInsufficientFunds = errors.New("Insufficient funds")
	// ErrInvalidQuantity means a sell quantity was not positive.
	ErrInvalidQuantity = errors.New("Quantity must be greater than 0")
	// ErrPositionNotFound means the user holds no position in the symbol.
	ErrPositionNotFound = errors.New("Stock not found in portfolio")
)

// AmountTooSmallError means the dollar amount buys fewer shares than
// the minimum tradable unit.
type AmountTooSmallError struct {
	MinUnit float64
}

func (e *AmountTooSmallError) Error() string {
	return fmt.Sprintf("Dollar amount too small to buy minimum share quantity (%.2f)", e.MinUnit)
}

// InsufficientSharesError means the sell quantity exceeds the owned
// quantity. No partial fills.
type InsufficientSharesError struct {
	Owned float64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("Insufficient shares. You own %v shares.", e.Owned)
}
