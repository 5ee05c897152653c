package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// SnapshotRepository implements [models.Repository] for [models.Snapshot] history.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot into the database with generated ID and sequence
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	sequence, err := NextSequence(r.db, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	snapshot.SetID(shared.GenerateID())
	snapshot.SetSequence(sequence)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, sequence, total_value, cash, invested, pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		snapshot.ID(),
		snapshot.Sequence(),
		snapshot.TotalValue(),
		snapshot.Cash(),
		snapshot.Invested(),
		snapshot.PnL(),
		snapshot.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	query := `
		SELECT id, sequence, total_value, cash, invested, pnl, created_at
		FROM snapshots
		WHERE id = ?
	`
	return r.scan(r.db.QueryRow(query, id))
}

// List retrieves the most recent snapshots, oldest first.
func (r *SnapshotRepository) List(limit int) ([]*models.Snapshot, error) {
	return r.ListSince(30 * 24 * time.Hour)
}

// ListSince retrieves snapshots newer than the given window, oldest first,
// shaped for charting.
func (r *SnapshotRepository) ListSince(window time.Duration) ([]*models.Snapshot, error) {
	cutoff := time.Now().Add(-window)

	query := `
		SELECT id, sequence, total_value, cash, invested, pnl, created_at
		FROM snapshots
		WHERE created_at >= ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// Delete removes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	return nil
}

func (r *SnapshotRepository) scan(row rowScanner) (*models.Snapshot, error) {
	var (
		id               string
		sequence         int
		totalValue, cash float64
		invested, pnl    float64
		createdAt        time.Time
	)

	err := row.Scan(&id, &sequence, &totalValue, &cash, &invested, &pnl, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	return models.RestoreSnapshot(id, sequence, totalValue, cash, invested, pnl, createdAt), nil
}
