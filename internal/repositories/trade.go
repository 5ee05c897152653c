package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// TradeRepository implements [models.Repository] for [models.Trade] history.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new [TradeRepository] with the given database connection
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create inserts a new trade into the database with generated ID and sequence
func (r *TradeRepository) Create(trade *models.Trade) error {
	sequence, err := NextSequence(r.db, "trades")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	trade.SetID(shared.GenerateID())
	trade.SetSequence(sequence)

	if err := trade.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO trades (id, sequence, symbol, action, shares, price, total, reasoning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reasoning any = trade.Reasoning()
	if reasoning == "" {
		reasoning = nil
	}

	_, err = r.db.Exec(query,
		trade.ID(),
		trade.Sequence(),
		trade.Symbol(),
		trade.Action(),
		trade.Shares(),
		trade.Price(),
		trade.Total(),
		reasoning,
		trade.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

// Get retrieves a trade by ID
func (r *TradeRepository) Get(id string) (*models.Trade, error) {
	query := `
		SELECT id, sequence, symbol, action, shares, price, total, reasoning, created_at
		FROM trades
		WHERE id = ?
	`
	return r.scan(r.db.QueryRow(query, id))
}

// List retrieves the most recent trades, newest first.
func (r *TradeRepository) List(limit int) ([]*models.Trade, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, sequence, symbol, action, shares, price, total, reasoning, created_at
		FROM trades
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// Delete removes a trade by ID
func (r *TradeRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("trade not found: %s", id)
	}

	return nil
}

// TrackRecord builds the all-time trading summary used in agent prompts and
// the status API.
func (r *TradeRepository) TrackRecord() (*models.TrackRecord, error) {
	record := &models.TrackRecord{}

	err := r.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&record.TotalTrades)
	if err != nil {
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM trades WHERE action = 'buy'").Scan(&record.TotalBuys)
	if err != nil {
		return nil, fmt.Errorf("failed to count buys: %w", err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM trades WHERE action = 'sell'").Scan(&record.TotalSells)
	if err != nil {
		return nil, fmt.Errorf("failed to count sells: %w", err)
	}

	rows, err := r.db.Query("SELECT DISTINCT symbol FROM trades ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to list traded symbols: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		record.SymbolsTraded = append(record.SymbolsTraded, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var firstTrade sql.NullTime
	err = r.db.QueryRow("SELECT MIN(created_at) FROM trades").Scan(&firstTrade)
	if err != nil {
		return nil, fmt.Errorf("failed to find first trade: %w", err)
	}
	if firstTrade.Valid {
		record.FirstTrade = firstTrade.Time.Format("2006-01-02")
	}

	err = r.db.QueryRow("SELECT COALESCE(SUM(total), 0) FROM trades WHERE action = 'buy'").Scan(&record.TotalBought)
	if err != nil {
		return nil, fmt.Errorf("failed to sum buys: %w", err)
	}

	err = r.db.QueryRow("SELECT COALESCE(SUM(total), 0) FROM trades WHERE action = 'sell'").Scan(&record.TotalSold)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sells: %w", err)
	}

	return record, nil
}

func (r *TradeRepository) scan(row rowScanner) (*models.Trade, error) {
	var (
		id, symbol, action   string
		sequence             int
		shares, price, total float64
		reasoning            sql.NullString
		createdAt            time.Time
	)

	err := row.Scan(&id, &sequence, &symbol, &action, &shares, &price, &total, &reasoning, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	return models.RestoreTrade(id, sequence, symbol, action, shares, price, total, reasoning.String, createdAt), nil
}
