package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// HoldingRepository implements [models.Repository] for portfolio [models.Holding] persistence.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new [HoldingRepository] with the given database connection
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Create inserts a new holding into the database with generated ID and sequence
func (r *HoldingRepository) Create(holding *models.Holding) error {
	sequence, err := NextSequence(r.db, "holdings")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	holding.SetID(shared.GenerateID())
	holding.SetSequence(sequence)

	if err := holding.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO holdings (id, sequence, symbol, shares, avg_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		holding.ID(),
		holding.Sequence(),
		holding.Symbol(),
		holding.Shares(),
		holding.AvgCost(),
		holding.CreatedAt(),
		holding.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// Get retrieves a holding by ID
func (r *HoldingRepository) Get(id string) (*models.Holding, error) {
	query := `
		SELECT id, sequence, symbol, shares, avg_cost, created_at, updated_at
		FROM holdings
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySymbol retrieves a holding by its ticker symbol.
func (r *HoldingRepository) GetBySymbol(symbol string) (*models.Holding, error) {
	query := `
		SELECT id, sequence, symbol, shares, avg_cost, created_at, updated_at
		FROM holdings
		WHERE symbol = ?
	`
	return r.scanOne(r.db.QueryRow(query, strings.ToUpper(symbol)))
}

// Upsert sets the position for a symbol.
//
// A zero or negative share count deletes the row entirely, matching the
// portfolio invariant that holdings always have positive shares.
func (r *HoldingRepository) Upsert(symbol string, shares, avgCost float64) error {
	symbol = strings.ToUpper(symbol)

	if shares <= 0 {
		_, err := r.db.Exec("DELETE FROM holdings WHERE symbol = ?", symbol)
		if err != nil {
			return fmt.Errorf("failed to close position %s: %w", symbol, err)
		}
		return nil
	}

	_, err := r.GetBySymbol(symbol)
	if err == nil {
		_, err = r.db.Exec(
			"UPDATE holdings SET shares = ?, avg_cost = ?, updated_at = ? WHERE symbol = ?",
			shares, avgCost, time.Now(), symbol,
		)
		if err != nil {
			return fmt.Errorf("failed to update holding %s: %w", symbol, err)
		}
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	return r.Create(models.NewHolding(symbol, shares, avgCost))
}

// List retrieves all open holdings ordered by symbol. The limit is ignored
// when zero or negative.
func (r *HoldingRepository) List(limit int) ([]*models.Holding, error) {
	query := `
		SELECT id, sequence, symbol, shares, avg_cost, created_at, updated_at
		FROM holdings
		WHERE shares > 0
		ORDER BY symbol
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		holding, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, holding)
	}

	return holdings, rows.Err()
}

// Delete removes a holding by ID
func (r *HoldingRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM holdings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("holding not found: %s", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *HoldingRepository) scanOne(row *sql.Row) (*models.Holding, error) {
	return r.scan(row)
}

func (r *HoldingRepository) scan(row rowScanner) (*models.Holding, error) {
	var (
		id, symbol           string
		sequence             int
		shares, avgCost      float64
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &symbol, &shares, &avgCost, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan holding: %w", err)
	}

	return models.RestoreHolding(id, sequence, symbol, shares, avgCost, createdAt, updatedAt), nil
}
