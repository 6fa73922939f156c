package trading

import (
	"context"
	"errors"

	"github.com/atharvakonge/paper-trading-api/internal/models"
	"github.com/atharvakonge/paper-trading-api/internal/store"
)

// DailyReturn computes day-over-day portfolio performance for userID.
func (s *Service) DailyReturn(ctx context.Context, userID int64) (*models.DailyReturns, error) {
	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	out := s.computeDailyReturns(ctx, user)
	return &out, nil
}

// AllTimeReturn computes portfolio performance since inception for
// userID.
func (s *Service) AllTimeReturn(ctx context.Context, userID int64) (*models.AllTimeReturns, error) {
	user, err := s.users.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	out := s.computeAllTimeReturns(ctx, user)
	return &out, nil
}

// computeDailyReturns values the portfolio at yesterday's and today's
// closes. Cash is assumed flat day-over-day, so it seeds both sides.
// Positions with fewer than two closes are silently skipped; any other
// history failure becomes an embedded per-symbol error entry.
func (s *Service) computeDailyReturns(ctx context.Context, user *models.User) models.DailyReturns {
	out := models.DailyReturns{
		PortfolioValueYesterday: user.CashBalance,
		PortfolioValueToday:     user.CashBalance,
		StockReturns:            []models.StockDailyReturn{},
	}

	for _, pos := range user.Positions {
		candles, err := s.history.History(ctx, pos.Symbol, 2)
		if err != nil {
			out.StockReturns = append(out.StockReturns, models.StockDailyReturn{
				Symbol: pos.Symbol,
				Error:  err.Error(),
			})
			continue
		}
		if len(candles) < 2 {
			continue
		}

		yesterday := candles[len(candles)-2].Close
		today := candles[len(candles)-1].Close

		stockReturn := (today - yesterday) * pos.Quantity
		stockReturnPct := (today - yesterday) / yesterday * 100

		out.DailyReturn += stockReturn
		out.PortfolioValueYesterday += yesterday * pos.Quantity
		out.PortfolioValueToday += today * pos.Quantity

		out.StockReturns = append(out.StockReturns, models.StockDailyReturn{
			Symbol:                pos.Symbol,
			DailyReturn:           stockReturn,
			DailyReturnPercentage: stockReturnPct,
			YesterdayPrice:        yesterday,
			TodayPrice:            today,
		})
	}

	if out.PortfolioValueYesterday > 0 {
		out.DailyReturnPercentage = (out.PortfolioValueToday - out.PortfolioValueYesterday) /
			out.PortfolioValueYesterday * 100
	}
	return out
}

// computeAllTimeReturns reconstructs capital deployed as the starting
// balance plus the cost basis of current holdings. Cost basis of shares
// already sold is never subtracted, which understates the investment
// base after sells; that matches the reference behavior and stays.
func (s *Service) computeAllTimeReturns(ctx context.Context, user *models.User) models.AllTimeReturns {
	out := models.AllTimeReturns{
		InitialInvestment: models.DefaultStartingBalance,
		CurrentValue:      user.CashBalance,
		StockPerformance:  []models.StockPerformance{},
	}

	for _, pos := range user.Positions {
		price, err := s.prices.GetPrice(ctx, pos.Symbol)
		if err != nil {
			out.StockPerformance = append(out.StockPerformance, models.StockPerformance{
				Symbol: pos.Symbol,
				Error:  err.Error(),
			})
			continue
		}

		initialValue := pos.AveragePrice * pos.Quantity
		currentValue := price * pos.Quantity

		out.InitialInvestment += initialValue
		out.CurrentValue += currentValue

		out.StockPerformance = append(out.StockPerformance, models.StockPerformance{
			Symbol:           pos.Symbol,
			TotalReturn:      currentValue - initialValue,
			ReturnPercentage: (price - pos.AveragePrice) / pos.AveragePrice * 100,
			InitialValue:     initialValue,
			CurrentValue:     currentValue,
			Quantity:         pos.Quantity,
			AveragePrice:     pos.AveragePrice,
			CurrentPrice:     price,
		})
	}

	out.TotalReturn = out.CurrentValue - out.InitialInvestment
	if out.InitialInvestment > 0 {
		out.TotalReturnPercentage = out.TotalReturn / out.InitialInvestment * 100
	}
	return out
}
