package models

// BuyRequest - what the client sends to buy stocks. Either Amount
// (dollar-based investing) or Shares must be set; shares are converted
// to a dollar amount at the current price before execution.
type BuyRequest struct {
	UserID int64    `json:"user_id"`
	Symbol string   `json:"symbol" binding:"required"`
	Amount *float64 `json:"amount"`
	Shares *float64 `json:"shares"`
}

// SellRequest - what the client sends to sell shares.
type SellRequest struct {
	UserID   int64   `json:"user_id"`
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

// PricesRequest - batch price lookup.
type PricesRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
}
