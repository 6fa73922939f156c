package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lib/pq" // PostgreSQL driver

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

// Postgres implements UserStore and QuoteStore on top of PostgreSQL.
// Positions are stored as a JSONB document so the whole user record is
// written in a single statement, matching the one-logical-write model.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects using the DB_* environment variables and
// verifies the connection.
func OpenPostgres() (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "trader"),
		getEnv("DB_PASSWORD", "trading123"),
		getEnv("DB_NAME", "paper_trading"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// EnsureSchema creates the tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            user_id               BIGINT PRIMARY KEY,
            cash_balance          NUMERIC(14,2) NOT NULL,
            positions             JSONB NOT NULL DEFAULT '[]',
            streak                INT NOT NULL DEFAULT 0,
            last_login            TIMESTAMPTZ,
            streak_reward_claimed TIMESTAMPTZ
        );
        CREATE TABLE IF NOT EXISTS price_cache (
            symbol TEXT PRIMARY KEY,
            price  NUMERIC(14,4) NOT NULL,
            ts     TIMESTAMPTZ NOT NULL
        );
    `)
	return err
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// FindUser loads the record for userID or returns ErrNotFound.
func (p *Postgres) FindUser(ctx context.Context, userID int64) (*models.User, error) {
	var (
		u         models.User
		positions []byte
	)
	err := p.db.QueryRowContext(ctx, `
        SELECT user_id, cash_balance, positions, streak, last_login, streak_reward_claimed
        FROM users WHERE user_id = $1
    `, userID).Scan(&u.UserID, &u.CashBalance, &positions, &u.Streak, &u.LastLogin, &u.StreakRewardClaimed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(positions, &u.Positions); err != nil {
		return nil, fmt.Errorf("decoding positions for user %d: %w", userID, err)
	}
	return &u, nil
}

// UpsertUser writes the whole record in one statement.
func (p *Postgres) UpsertUser(ctx context.Context, user *models.User) error {
	positions, err := json.Marshal(user.Positions)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
        INSERT INTO users (user_id, cash_balance, positions, streak, last_login, streak_reward_claimed)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id)
        DO UPDATE SET
            cash_balance          = EXCLUDED.cash_balance,
            positions             = EXCLUDED.positions,
            streak                = EXCLUDED.streak,
            last_login            = EXCLUDED.last_login,
            streak_reward_claimed = EXCLUDED.streak_reward_claimed
    `, user.UserID, user.CashBalance, positions, user.Streak, user.LastLogin, user.StreakRewardClaimed)
	return err
}

// DeleteUser removes the record for userID.
func (p *Postgres) DeleteUser(ctx context.Context, userID int64) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	return err
}

// Find returns the cached quote for symbol or ErrNotFound.
func (p *Postgres) Find(ctx context.Context, symbol string) (models.PriceEntry, error) {
	var e models.PriceEntry
	err := p.db.QueryRowContext(ctx, `
        SELECT symbol, price, ts FROM price_cache WHERE symbol = $1
    `, symbol).Scan(&e.Symbol, &e.Price, &e.Timestamp)
	if err == sql.ErrNoRows {
		return models.PriceEntry{}, ErrNotFound
	}
	if err != nil {
		return models.PriceEntry{}, err
	}
	return e, nil
}

// Upsert overwrites the cached quote for symbol.
func (p *Postgres) Upsert(ctx context.Context, symbol string, price float64, ts time.Time) error {
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO price_cache (symbol, price, ts)
        VALUES ($1, $2, $3)
        ON CONFLICT (symbol)
        DO UPDATE SET price = EXCLUDED.price, ts = EXCLUDED.ts
    `, symbol, price, ts)
	return err
}

// FindBatch returns cached quotes for symbols newer than fresherThan.
func (p *Postgres) FindBatch(ctx context.Context, symbols []string, fresherThan time.Time) ([]models.PriceEntry, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	rows, err := p.db.QueryContext(ctx, `
        SELECT symbol, price, ts FROM price_cache
        WHERE symbol = ANY($1) AND ts > $2
    `, pq.Array(symbols), fresherThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PriceEntry
	for rows.Next() {
		var e models.PriceEntry
		if err := rows.Scan(&e.Symbol, &e.Price, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ UserStore  = (*Postgres)(nil)
	_ QuoteStore = (*Postgres)(nil)
)
