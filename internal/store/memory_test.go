package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atharvakonge/paper-trading-api/internal/models"
)

func TestMemory_UserRoundTrip(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if _, err := mem.FindUser(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user := models.NewUser(1)
	user.Positions = append(user.Positions, models.Position{Symbol: "AAPL", Quantity: 5, AveragePrice: 150})
	if err := mem.UpsertUser(ctx, user); err != nil {
		t.Fatal(err)
	}

	got, err := mem.FindUser(ctx, 1)
	if err != nil {
		t.Fatalf("FindUser failed: %v", err)
	}
	if got.CashBalance != models.DefaultStartingBalance {
		t.Errorf("expected starting balance, got %.2f", got.CashBalance)
	}
	if len(got.Positions) != 1 || got.Positions[0].Symbol != "AAPL" {
		t.Errorf("unexpected positions: %+v", got.Positions)
	}

	if err := mem.DeleteUser(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.FindUser(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	user := models.NewUser(1)
	user.Positions = append(user.Positions, models.Position{Symbol: "AAPL", Quantity: 5, AveragePrice: 150})
	if err := mem.UpsertUser(ctx, user); err != nil {
		t.Fatal(err)
	}

	// Mutating what the caller handed in or got back must not reach
	// the stored record.
	user.Positions[0].Quantity = 999
	first, err := mem.FindUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	first.CashBalance = 0
	first.Positions[0].Quantity = 888

	fresh, err := mem.FindUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Positions[0].Quantity != 5 {
		t.Errorf("stored quantity aliased: %.2f", fresh.Positions[0].Quantity)
	}
	if fresh.CashBalance != models.DefaultStartingBalance {
		t.Errorf("stored balance aliased: %.2f", fresh.CashBalance)
	}
}

func TestMemory_QuoteFreshnessFilter(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	now := time.Now()

	if err := mem.Upsert(ctx, "AAPL", 150, now); err != nil {
		t.Fatal(err)
	}
	if err := mem.Upsert(ctx, "MSFT", 300, now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	entries, err := mem.FindBatch(ctx, []string{"AAPL", "MSFT", "GONE"}, now.Add(-30*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Symbol != "AAPL" {
		t.Errorf("expected only the fresh AAPL entry, got %+v", entries)
	}

	if _, err := mem.Find(ctx, "GONE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}
