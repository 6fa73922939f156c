// Package trading implements the core of the simulator: dollar-based
// buy/sell execution, daily and all-time return calculation, and the
// login-streak reward engine.
package trading

import (
	"context"
	"errors"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/marketdata"
	"github.com/atharvakonge/paper-trading-api/internal/metrics"
	"github.com/atharvakonge/paper-trading-api/internal/models"
	"github.com/atharvakonge/paper-trading-api/internal/pricing"
	"github.com/atharvakonge/paper-trading-api/internal/store"
)

// Service executes trades and derives portfolio metrics. All
// collaborators are injected; the service holds no global state beyond
// its per-user lock map.
type Service struct {
	users   store.UserStore
	prices  *pricing.Service
	history marketdata.Provider
	locks   *userLocks

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// New wires a trading service from its collaborators.
func New(users store.UserStore, prices *pricing.Service, history marketdata.Provider) *Service {
	return &Service{
		users:   users,
		prices:  prices,
		history: history,
		locks:   newUserLocks(),
		Now:     time.Now,
	}
}

// InitializeUser creates the record for userID if it does not exist and
// reports whether a record was created.
func (s *Service) InitializeUser(ctx context.Context, userID int64) (bool, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	_, err := s.users.FindUser(ctx, userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	user := models.NewUser(userID)
	now := s.Now().UTC()
	user.LastLogin = &now
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// Buy spends amount dollars on symbol at the current market price.
// The position merges by weighted-average cost; cash is debited by the
// exact amount and the whole record persists in one write. On any
// failure cash and positions are left untouched.
func (s *Service) Buy(ctx context.Context, userID int64, symbol string, amount float64) (*models.TransactionResult, error) {
	symbol = pricing.Normalize(symbol)

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failBuy(ErrUserNotFound)
	}
	if err != nil {
		return nil, failBuy(err)
	}

	if amount <= 0 {
		return nil, failBuy(&AmountTooSmallError{MinUnit: models.MinShareQuantity})
	}
	if amount > user.CashBalance {
		return nil, failBuy(ErrInsufficientFunds)
	}

	price, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, failBuy(err)
	}

	shares := amount / price
	if round2(shares) < models.MinShareQuantity {
		return nil, failBuy(&AmountTooSmallError{MinUnit: models.MinShareQuantity})
	}

	if pos := user.FindPosition(symbol); pos != nil {
		newAvg := weightedAverage(pos.Quantity, pos.AveragePrice, amount, shares)
		pos.Quantity += shares
		pos.AveragePrice = newAvg
	} else {
		user.Positions = append(user.Positions, models.Position{
			Symbol:       symbol,
			Quantity:     shares,
			AveragePrice: price,
		})
	}
	user.CashBalance = round2(user.CashBalance - amount)

	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, failBuy(err)
	}
	metrics.TradesTotal.WithLabelValues("buy").Inc()

	return &models.TransactionResult{
		Transaction: models.Transaction{
			Symbol:        symbol,
			SharesBought:  shares,
			PricePerShare: price,
			TotalAmount:   amount,
		},
		Portfolio: s.buildSnapshot(ctx, user),
	}, nil
}

// Sell disposes quantity shares of symbol at the current market price.
// The quantity is rounded to 2 decimals before any computation and a
// residual position below the minimum unit is removed entirely.
func (s *Service) Sell(ctx context.Context, userID int64, symbol string, quantity float64) (*models.SellResult, error) {
	symbol = pricing.Normalize(symbol)

	if quantity <= 0 {
		return nil, failSell(ErrInvalidQuantity)
	}
	// Authoritative rounding: everything below works on this value.
	quantity = round2(quantity)

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	price, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, failSell(err)
	}
	proceeds := round2(price * quantity)

	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failSell(ErrUserNotFound)
	}
	if err != nil {
		return nil, failSell(err)
	}

	pos := user.FindPosition(symbol)
	if pos == nil {
		return nil, failSell(ErrPositionNotFound)
	}
	if pos.Quantity < quantity {
		return nil, failSell(&InsufficientSharesError{Owned: pos.Quantity})
	}

	pos.Quantity = round2(pos.Quantity - quantity)
	if pos.Quantity < models.MinShareQuantity {
		// Residual dust counts as fully sold.
		user.RemovePosition(symbol)
	}
	user.CashBalance = round2(user.CashBalance + proceeds)

	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, failSell(err)
	}
	metrics.TradesTotal.WithLabelValues("sell").Inc()

	return &models.SellResult{Value: proceeds, PricePerShare: price}, nil
}

// GetPortfolio returns the current snapshot including nested daily and
// all-time returns.
func (s *Service) GetPortfolio(ctx context.Context, userID int64) (*models.PortfolioSnapshot, error) {
	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	snap := s.buildSnapshot(ctx, user)
	return &snap, nil
}

// GetPortfolioWithStreak updates the login streak first so a granted
// reward is reflected in the returned cash balance, then snapshots the
// portfolio.
func (s *Service) GetPortfolioWithStreak(ctx context.Context, userID int64) (*models.PortfolioWithStreak, error) {
	streak, err := s.UpdateLoginStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.PortfolioWithStreak{
		PortfolioSnapshot: *snap,
		StreakInfo:        *streak,
	}, nil
}

// buildSnapshot values each position at the freshest resolvable price.
// A position whose price cannot be resolved keeps nil price/value
// fields and contributes nothing to the total.
func (s *Service) buildSnapshot(ctx context.Context, user *models.User) models.PortfolioSnapshot {
	holdings := make([]models.Holding, 0, len(user.Positions))
	totalValue := user.CashBalance

	for _, pos := range user.Positions {
		h := models.Holding{
			Symbol:       pos.Symbol,
			Quantity:     pos.Quantity,
			AveragePrice: pos.AveragePrice,
		}
		if price, err := s.prices.GetPrice(ctx, pos.Symbol); err == nil {
			value := price * pos.Quantity
			h.CurrentPrice = &price
			h.CurrentValue = &value
			totalValue += value
		}
		holdings = append(holdings, h)
	}

	return models.PortfolioSnapshot{
		Holdings:       holdings,
		CashBalance:    user.CashBalance,
		TotalValue:     totalValue,
		DailyReturns:   s.computeDailyReturns(ctx, user),
		AllTimeReturns: s.computeAllTimeReturns(ctx, user),
	}
}

func failBuy(err error) error {
	metrics.TradeFailures.WithLabelValues("buy").Inc()
	return err
}

func failSell(err error) error {
	metrics.TradeFailures.WithLabelValues("sell").Inc()
	return err
}
