package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atharvakonge/paper-trading-api/internal/handlers"
	"github.com/atharvakonge/paper-trading-api/internal/listing"
	"github.com/atharvakonge/paper-trading-api/internal/marketdata"
	"github.com/atharvakonge/paper-trading-api/internal/pricing"
	"github.com/atharvakonge/paper-trading-api/internal/store"
	"github.com/atharvakonge/paper-trading-api/internal/trading"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults or environment variables")
	}

	// Initialize database
	pg, err := store.OpenPostgres()
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to ensure schema: ", err)
	}
	log.Println("Database connected successfully")

	// Quote cache backend: Redis when configured, Postgres otherwise.
	var quotes store.QuoteStore = pg
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: addr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		quotes = store.NewRedisQuotes(rdb, 24*time.Hour)
		log.Println("Using redis quote cache at " + addr)
	}

	source := marketdata.NewYahooClient()
	prices := pricing.New(quotes, source)
	tradingSvc := trading.New(pg, prices, source)

	// Get number of workers from env or default to 5
	numWorkers := 5
	if workers := os.Getenv("NUM_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			numWorkers = n
		}
	}

	processor := trading.NewTradeProcessor(tradingSvc, numWorkers)
	processor.Start()
	defer processor.Stop()

	// S&P 500 listing: scrape the ticker universe if the file is
	// missing (first run).
	tickersFile := os.Getenv("TICKERS_FILE")
	if tickersFile == "" {
		tickersFile = "tickers.txt"
	}
	if _, err := os.Stat(tickersFile); os.IsNotExist(err) {
		log.Println("Tickers file missing, scraping constituents list...")
		scrapeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := listing.ScrapeTickers(scrapeCtx, tickersFile); err != nil {
			log.Println("Scrape failed, /api/sp500-data will be unavailable: ", err)
		}
		cancel()
	}
	listingSvc := listing.New(tickersFile, prices)

	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	api := &handlers.API{
		Trading:   tradingSvc,
		Processor: processor,
		Prices:    prices,
		Listing:   listingSvc,
	}
	api.Register(router)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Get port from environment or default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server starting on http://localhost:" + port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
