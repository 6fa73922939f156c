// Package handlers is the thin HTTP layer: it binds requests, calls the
// core, and maps core failures to status codes.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/paper-trading-api/internal/listing"
	"github.com/atharvakonge/paper-trading-api/internal/models"
	"github.com/atharvakonge/paper-trading-api/internal/pricing"
	"github.com/atharvakonge/paper-trading-api/internal/trading"
)

// defaultUserID serves clients that do not send a user id; the frontend
// runs against a single logical user.
const defaultUserID int64 = 1

// API bundles the collaborators the HTTP layer calls into.
type API struct {
	Trading   *trading.Service
	Processor *trading.TradeProcessor
	Prices    *pricing.Service
	Listing   *listing.Service
}

// Register wires all routes onto the router.
func (a *API) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/initialize-user", a.InitializeUser)
		api.POST("/login", a.Login)
		api.POST("/buy", a.Buy)
		api.POST("/sell", a.Sell)
		api.GET("/portfolio/details", a.PortfolioDetails)
		api.GET("/stock-price/:symbol", a.StockPrice)
		api.POST("/stock-prices", a.StockPrices)
		api.GET("/sp500-data", a.SP500Data)
	}
	router.GET("/ws/prices", a.StreamPrices)
}

func orDefault(userID int64) int64 {
	if userID == 0 {
		return defaultUserID
	}
	return userID
}

func queryUserID(c *gin.Context) int64 {
	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id
		}
	}
	return defaultUserID
}

// errStatus maps core failures to HTTP status codes. Everything the
// user can cause is a 400; unknown users are 404; the rest is a 500.
func errStatus(err error) int {
	if errors.Is(err, trading.ErrUserNotFound) {
		return http.StatusNotFound
	}
	var (
		amountErr *trading.AmountTooSmallError
		sharesErr *trading.InsufficientSharesError
		priceErr  *pricing.PriceUnavailableError
	)
	if errors.Is(err, trading.ErrInsufficientFunds) ||
		errors.Is(err, trading.ErrInvalidQuantity) ||
		errors.Is(err, trading.ErrPositionNotFound) ||
		errors.As(err, &amountErr) ||
		errors.As(err, &sharesErr) ||
		errors.As(err, &priceErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(errStatus(err), gin.H{"success": false, "error": err.Error()})
}

// InitializeUser handles POST /api/initialize-user
func (a *API) InitializeUser(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	_ = c.ShouldBindJSON(&req) // empty body means the default user
	userID := orDefault(req.UserID)

	created, err := a.Trading.InitializeUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	snapshot, err := a.Trading.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"created":   created,
		"portfolio": snapshot,
	})
}

// Login handles POST /api/login - streak update first, then portfolio.
func (a *API) Login(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	_ = c.ShouldBindJSON(&req)

	result, err := a.Trading.GetPortfolioWithStreak(c.Request.Context(), orDefault(req.UserID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Buy handles POST /api/buy. Dollar-based when amount is set; a share
// count converts to dollars at the current price first.
func (a *API) Buy(c *gin.Context) {
	var req models.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var amount float64
	switch {
	case req.Amount != nil:
		amount = *req.Amount
	case req.Shares != nil:
		price, err := a.Prices.GetPrice(c.Request.Context(), req.Symbol)
		if err != nil {
			fail(c, err)
			return
		}
		amount = *req.Shares * price
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Must provide either amount or shares"})
		return
	}

	outcome := a.Processor.SubmitBuy(c.Request.Context(), orDefault(req.UserID), req.Symbol, amount)
	if outcome.Err != nil {
		fail(c, outcome.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": outcome.Result.Transaction,
		"portfolio":   outcome.Result.Portfolio,
	})
}

// Sell handles POST /api/sell
func (a *API) Sell(c *gin.Context) {
	var req models.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := a.Trading.Sell(c.Request.Context(), orDefault(req.UserID), req.Symbol, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"value":           result.Value,
		"price_per_share": result.PricePerShare,
	})
}

// PortfolioDetails handles GET /api/portfolio/details
func (a *API) PortfolioDetails(c *gin.Context) {
	snapshot, err := a.Trading.GetPortfolio(c.Request.Context(), queryUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// StockPrice handles GET /api/stock-price/:symbol
func (a *API) StockPrice(c *gin.Context) {
	symbol := pricing.Normalize(c.Param("symbol"))
	price, err := a.Prices.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "symbol": symbol, "price": price})
}

// StockPrices handles POST /api/stock-prices
func (a *API) StockPrices(c *gin.Context) {
	var req models.PricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	prices, errs := a.Prices.GetPrices(c.Request.Context(), req.Symbols)
	c.JSON(http.StatusOK, gin.H{"prices": prices, "errors": errs})
}

// SP500Data handles GET /api/sp500-data?page=N
func (a *API) SP500Data(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			page = p
		}
	}
	result, err := a.Listing.FetchPage(c.Request.Context(), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
