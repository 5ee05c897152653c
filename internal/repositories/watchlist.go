package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/stockmind/internal/models"
)

// DefaultWatchlist seeds a fresh database with a spread across sectors and
// market caps so the agent has something to look at on day one.
var DefaultWatchlist = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META", // tech
	"JPM", "V", "GS", // finance
	"JNJ", "UNH", "PFE", // healthcare
	"XOM", "NEE", // energy
	"CAT", "DE", // industrials
	"COST", "NKE", "SBUX", // consumer
	"AMD", "PLTR", "SOFI", "RKLB", "HOOD", "COIN", "SQ", // growth / mid-cap
	"RIVN", "MARA", "SMCI", // speculative / volatile
}

// WatchlistRepository persists the set of symbols the agent watches.
//
// Keyed by symbol; not a full [models.Repository] because entries have no
// generated ID or lifecycle beyond add/list.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new [WatchlistRepository] with the given database connection
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a symbol into the watchlist. Adding an existing symbol is a no-op.
func (r *WatchlistRepository) Add(symbol string) error {
	entry := models.NewWatchlistEntry(symbol)
	if entry.Symbol == "" {
		return fmt.Errorf("watchlist symbol is required")
	}

	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO watchlist (symbol, added_at) VALUES (?, ?)",
		entry.Symbol, entry.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", entry.Symbol, err)
	}

	return nil
}

// List returns all watched symbols in alphabetical order.
func (r *WatchlistRepository) List() ([]string, error) {
	rows, err := r.db.Query("SELECT symbol FROM watchlist ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Remove deletes a symbol from the watchlist.
func (r *WatchlistRepository) Remove(symbol string) error {
	entry := models.NewWatchlistEntry(symbol)
	_, err := r.db.Exec("DELETE FROM watchlist WHERE symbol = ?", entry.Symbol)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", entry.Symbol, err)
	}
	return nil
}

// SeedDefaults inserts the default watchlist. Idempotent: existing symbols
// are left alone.
func (r *WatchlistRepository) SeedDefaults() error {
	for _, symbol := range DefaultWatchlist {
		if err := r.Add(symbol); err != nil {
			return err
		}
	}
	return nil
}
