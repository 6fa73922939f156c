package models

// Transaction describes an executed buy.
type Transaction struct {
	Symbol        string  `json:"symbol"`
	SharesBought  float64 `json:"shares_bought"`
	PricePerShare float64 `json:"price_per_share"`
	TotalAmount   float64 `json:"total_amount"`
}

// TransactionResult is returned by a successful buy: the trade detail
// plus the portfolio snapshot after the trade.
type TransactionResult struct {
	Transaction Transaction       `json:"transaction"`
	Portfolio   PortfolioSnapshot `json:"portfolio"`
}

// SellResult is returned by a successful sell.
type SellResult struct {
	Value         float64 `json:"value"`
	PricePerShare float64 `json:"price_per_share"`
}

// Holding is a position annotated with its current market value.
// CurrentPrice and CurrentValue are nil when the price could not be
// resolved.
type Holding struct {
	Symbol       string   `json:"symbol"`
	Quantity     float64  `json:"quantity"`
	AveragePrice float64  `json:"average_price"`
	CurrentPrice *float64 `json:"current_price"`
	CurrentValue *float64 `json:"current_value"`
}

// PortfolioSnapshot is the full view of a user's portfolio, including
// nested daily and all-time return calculations.
type PortfolioSnapshot struct {
	Holdings       []Holding      `json:"portfolio"`
	CashBalance    float64        `json:"cash_balance"`
	TotalValue     float64        `json:"total_value"`
	DailyReturns   DailyReturns   `json:"daily_returns"`
	AllTimeReturns AllTimeReturns `json:"all_time_returns"`
}

// StockDailyReturn is the day-over-day performance of one position.
// Error is set (and the numeric fields zero) when the history lookup
// failed for that symbol.
type StockDailyReturn struct {
	Symbol                string  `json:"symbol"`
	DailyReturn           float64 `json:"daily_return"`
	DailyReturnPercentage float64 `json:"daily_return_percentage"`
	YesterdayPrice        float64 `json:"yesterday_price"`
	TodayPrice            float64 `json:"today_price"`
	Error                 string  `json:"error,omitempty"`
}

// DailyReturns aggregates day-over-day portfolio performance.
type DailyReturns struct {
	DailyReturn             float64            `json:"daily_return"`
	DailyReturnPercentage   float64            `json:"daily_return_percentage"`
	PortfolioValueYesterday float64            `json:"portfolio_value_yesterday"`
	PortfolioValueToday     float64            `json:"portfolio_value_today"`
	StockReturns            []StockDailyReturn `json:"stock_returns"`
}

// StockPerformance is the all-time performance of one position against
// its cost basis. Error is set when the spot price was unavailable.
type StockPerformance struct {
	Symbol           string  `json:"symbol"`
	TotalReturn      float64 `json:"total_return"`
	ReturnPercentage float64 `json:"return_percentage"`
	InitialValue     float64 `json:"initial_value"`
	CurrentValue     float64 `json:"current_value"`
	Quantity         float64 `json:"quantity"`
	AveragePrice     float64 `json:"average_price"`
	CurrentPrice     float64 `json:"current_price"`
	Error            string  `json:"error,omitempty"`
}

// AllTimeReturns aggregates portfolio performance since inception.
type AllTimeReturns struct {
	TotalReturn           float64            `json:"total_return"`
	TotalReturnPercentage float64            `json:"total_return_percentage"`
	InitialInvestment     float64            `json:"initial_investment"`
	CurrentValue          float64            `json:"current_value"`
	StockPerformance      []StockPerformance `json:"stock_performance"`
}

// StreakResult reports the outcome of a login-streak update.
type StreakResult struct {
	Message string  `json:"message"`
	Streak  int     `json:"streak"`
	Reward  float64 `json:"reward"`
}

// PortfolioWithStreak combines a streak update with the portfolio
// snapshot taken after the reward was credited.
type PortfolioWithStreak struct {
	PortfolioSnapshot
	StreakInfo StreakResult `json:"streak_info"`
}
