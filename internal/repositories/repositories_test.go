package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "thoughts")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "thoughts")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected sequence to increment by 1, got %d then %d", first, second)
	}
}

func TestHoldingRepository(t *testing.T) {
	t.Run("Create And GetBySymbol", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHoldingRepository(db)
		holding := models.NewHolding("aapl", 10, 150.25)

		if err := repo.Create(holding); err != nil {
			t.Fatalf("failed to create holding: %v", err)
		}
		if holding.ID() == "" {
			t.Error("holding ID should be set after creation")
		}

		retrieved, err := repo.GetBySymbol("AAPL")
		if err != nil {
			t.Fatalf("failed to get holding: %v", err)
		}
		if retrieved.Symbol() != "AAPL" {
			t.Errorf("expected normalized symbol AAPL, got %s", retrieved.Symbol())
		}
		if retrieved.Shares() != 10 {
			t.Errorf("expected 10 shares, got %f", retrieved.Shares())
		}
	})

	t.Run("Upsert updates existing position", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHoldingRepository(db)
		if err := repo.Upsert("NVDA", 5, 400); err != nil {
			t.Fatalf("failed to create position: %v", err)
		}
		if err := repo.Upsert("NVDA", 8, 420); err != nil {
			t.Fatalf("failed to update position: %v", err)
		}

		holding, err := repo.GetBySymbol("NVDA")
		if err != nil {
			t.Fatalf("failed to get holding: %v", err)
		}
		if holding.Shares() != 8 || holding.AvgCost() != 420 {
			t.Errorf("expected 8 shares @ 420, got %f @ %f", holding.Shares(), holding.AvgCost())
		}

		holdings, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list holdings: %v", err)
		}
		if len(holdings) != 1 {
			t.Errorf("expected one holding row, got %d", len(holdings))
		}
	})

	t.Run("Upsert with zero shares closes position", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHoldingRepository(db)
		if err := repo.Upsert("TSLA", 3, 200); err != nil {
			t.Fatalf("failed to create position: %v", err)
		}
		if err := repo.Upsert("TSLA", 0, 200); err != nil {
			t.Fatalf("failed to close position: %v", err)
		}

		if _, err := repo.GetBySymbol("TSLA"); err != sql.ErrNoRows {
			t.Errorf("expected sql.ErrNoRows for closed position, got %v", err)
		}
	})

	t.Run("List orders by symbol", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewHoldingRepository(db)
		for _, symbol := range []string{"MSFT", "AAPL", "GOOGL"} {
			if err := repo.Upsert(symbol, 1, 100); err != nil {
				t.Fatalf("failed to create %s: %v", symbol, err)
			}
		}

		holdings, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list holdings: %v", err)
		}
		if len(holdings) != 3 {
			t.Fatalf("expected 3 holdings, got %d", len(holdings))
		}
		if holdings[0].Symbol() != "AAPL" || holdings[2].Symbol() != "MSFT" {
			t.Errorf("holdings not sorted by symbol: %s, %s, %s",
				holdings[0].Symbol(), holdings[1].Symbol(), holdings[2].Symbol())
		}
	})
}

func TestTradeRepository(t *testing.T) {
	t.Run("Create And List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTradeRepository(db)
		first := models.NewTrade("AAPL", models.ActionBuy, 10, 150, 1500, "earnings momentum")
		second := models.NewTrade("AAPL", models.ActionSell, 5, 160, 800, "")

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create trade: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create trade: %v", err)
		}

		trades, err := repo.List(10)
		if err != nil {
			t.Fatalf("failed to list trades: %v", err)
		}
		if len(trades) != 2 {
			t.Fatalf("expected 2 trades, got %d", len(trades))
		}
		if trades[0].Action() != models.ActionSell {
			t.Errorf("expected newest trade first, got %s", trades[0].Action())
		}
		if trades[1].Reasoning() != "earnings momentum" {
			t.Errorf("expected reasoning to round-trip, got %q", trades[1].Reasoning())
		}
	})

	t.Run("Create rejects invalid action", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTradeRepository(db)
		trade := models.NewTrade("AAPL", "short", 10, 150, 1500, "")

		if err := repo.Create(trade); err == nil {
			t.Error("expected validation error for invalid action")
		}
	})

	t.Run("TrackRecord", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTradeRepository(db)

		record, err := repo.TrackRecord()
		if err != nil {
			t.Fatalf("failed to build empty track record: %v", err)
		}
		if record.TotalTrades != 0 {
			t.Errorf("expected empty track record, got %d trades", record.TotalTrades)
		}

		for _, trade := range []*models.Trade{
			models.NewTrade("AAPL", models.ActionBuy, 10, 150, 1500, ""),
			models.NewTrade("NVDA", models.ActionBuy, 2, 400, 800, ""),
			models.NewTrade("AAPL", models.ActionSell, 5, 160, 800, ""),
		} {
			if err := repo.Create(trade); err != nil {
				t.Fatalf("failed to create trade: %v", err)
			}
		}

		record, err = repo.TrackRecord()
		if err != nil {
			t.Fatalf("failed to build track record: %v", err)
		}
		if record.TotalTrades != 3 || record.TotalBuys != 2 || record.TotalSells != 1 {
			t.Errorf("unexpected counts: %+v", record)
		}
		if len(record.SymbolsTraded) != 2 {
			t.Errorf("expected 2 traded symbols, got %v", record.SymbolsTraded)
		}
		if record.TotalBought != 2300 {
			t.Errorf("expected total bought 2300, got %f", record.TotalBought)
		}
		if record.TotalSold != 800 {
			t.Errorf("expected total sold 800, got %f", record.TotalSold)
		}
		if record.FirstTrade == "" {
			t.Error("expected first trade date to be set")
		}
	})
}

func TestThoughtRepository(t *testing.T) {
	t.Run("Create And Cursor", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewThoughtRepository(db)
		for _, content := range []string{"first", "second", "third"} {
			if err := repo.Create(models.NewThought(models.ThoughtThinking, content, nil)); err != nil {
				t.Fatalf("failed to create thought: %v", err)
			}
		}

		all, err := repo.ListAfter(0, 100)
		if err != nil {
			t.Fatalf("failed to list thoughts: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 thoughts, got %d", len(all))
		}
		if all[0].Content() != "third" {
			t.Errorf("expected newest thought first, got %q", all[0].Content())
		}

		cursor := all[1].Sequence()
		newer, err := repo.ListAfter(cursor, 100)
		if err != nil {
			t.Fatalf("failed to list after cursor: %v", err)
		}
		if len(newer) != 1 || newer[0].Content() != "third" {
			t.Errorf("expected only the thought after the cursor, got %d", len(newer))
		}
	})

	t.Run("Metadata round-trips", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewThoughtRepository(db)
		thought := models.NewThought(models.ThoughtTrade, "bought shares", map[string]any{
			"symbol": "AAPL",
			"shares": 10.0,
		})

		if err := repo.Create(thought); err != nil {
			t.Fatalf("failed to create thought: %v", err)
		}

		retrieved, err := repo.Get(thought.ID())
		if err != nil {
			t.Fatalf("failed to get thought: %v", err)
		}
		if retrieved.Metadata()["symbol"] != "AAPL" {
			t.Errorf("expected metadata to round-trip, got %v", retrieved.Metadata())
		}
	})
}

func TestMemoryRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewMemoryRepository(db)
	if err := repo.Create(models.NewMemory("", "tech dips every earnings season")); err != nil {
		t.Fatalf("failed to create memory: %v", err)
	}

	memories, err := repo.List(10)
	if err != nil {
		t.Fatalf("failed to list memories: %v", err)
	}
	if len(memories) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(memories))
	}
	if memories[0].Category() != models.DefaultMemoryCategory {
		t.Errorf("expected default category, got %s", memories[0].Category())
	}
}

func TestSnapshotRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSnapshotRepository(db)
	if err := repo.Create(models.NewSnapshot(105000.333, 20000, 85000, 5000)); err != nil {
		t.Fatalf("failed to create snapshot: %v", err)
	}

	snapshots, err := repo.ListSince(24 * time.Hour)
	if err != nil {
		t.Fatalf("failed to list snapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].TotalValue() != 105000.33 {
		t.Errorf("expected rounded total value, got %f", snapshots[0].TotalValue())
	}
}

func TestWatchlistRepository(t *testing.T) {
	t.Run("Add is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewWatchlistRepository(db)
		if err := repo.Add("amd"); err != nil {
			t.Fatalf("failed to add symbol: %v", err)
		}
		if err := repo.Add("AMD"); err != nil {
			t.Fatalf("re-adding symbol should not fail: %v", err)
		}

		symbols, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list watchlist: %v", err)
		}
		if len(symbols) != 1 || symbols[0] != "AMD" {
			t.Errorf("expected [AMD], got %v", symbols)
		}
	})

	t.Run("SeedDefaults", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewWatchlistRepository(db)
		if err := repo.SeedDefaults(); err != nil {
			t.Fatalf("failed to seed defaults: %v", err)
		}
		if err := repo.SeedDefaults(); err != nil {
			t.Fatalf("re-seeding should not fail: %v", err)
		}

		symbols, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list watchlist: %v", err)
		}
		if len(symbols) != len(DefaultWatchlist) {
			t.Errorf("expected %d symbols, got %d", len(DefaultWatchlist), len(symbols))
		}
	})
}

func TestSettingsRepository(t *testing.T) {
	t.Run("Cash balance lifecycle", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingsRepository(db)

		balance, err := repo.CashBalance()
		if err != nil {
			t.Fatalf("failed to read unset balance: %v", err)
		}
		if balance != 0 {
			t.Errorf("expected 0 for unset balance, got %f", balance)
		}

		seeded, err := repo.EnsureDefaults(100000)
		if err != nil {
			t.Fatalf("failed to ensure defaults: %v", err)
		}
		if !seeded {
			t.Error("expected first EnsureDefaults to seed")
		}

		if err := repo.SetCashBalance(98765.43); err != nil {
			t.Fatalf("failed to set balance: %v", err)
		}

		seeded, err = repo.EnsureDefaults(100000)
		if err != nil {
			t.Fatalf("failed to re-ensure defaults: %v", err)
		}
		if seeded {
			t.Error("EnsureDefaults must not overwrite an existing balance")
		}

		balance, err = repo.CashBalance()
		if err != nil {
			t.Fatalf("failed to read balance: %v", err)
		}
		if balance != 98765.43 {
			t.Errorf("expected 98765.43, got %f", balance)
		}
	})

	t.Run("Risk profile", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingsRepository(db)

		profile, err := repo.RiskProfile()
		if err != nil {
			t.Fatalf("failed to read default profile: %v", err)
		}
		if profile != DefaultRiskProfile {
			t.Errorf("expected %s, got %s", DefaultRiskProfile, profile)
		}

		if err := repo.SetRiskProfile("aggressive"); err != nil {
			t.Fatalf("failed to set profile: %v", err)
		}

		err = repo.SetRiskProfile("reckless")
		if !errors.Is(err, shared.ErrInvalidRiskProfile) {
			t.Errorf("expected ErrInvalidRiskProfile, got %v", err)
		}

		profile, err = repo.RiskProfile()
		if err != nil {
			t.Fatalf("failed to read profile: %v", err)
		}
		if profile != "aggressive" {
			t.Errorf("invalid set should not change profile, got %s", profile)
		}
	})
}
