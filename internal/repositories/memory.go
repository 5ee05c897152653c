package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// MemoryRepository implements [models.Repository] for the agent's [models.Memory] journal.
type MemoryRepository struct {
	db *sql.DB
}

// NewMemoryRepository creates a new [MemoryRepository] with the given database connection
func NewMemoryRepository(db *sql.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Create inserts a new memory into the database with generated ID and sequence
func (r *MemoryRepository) Create(memory *models.Memory) error {
	sequence, err := NextSequence(r.db, "memories")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	memory.SetID(shared.GenerateID())
	memory.SetSequence(sequence)

	if err := memory.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO memories (id, sequence, category, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		memory.ID(),
		memory.Sequence(),
		memory.Category(),
		memory.Content(),
		memory.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}

	return nil
}

// Get retrieves a memory by ID
func (r *MemoryRepository) Get(id string) (*models.Memory, error) {
	query := `
		SELECT id, sequence, category, content, created_at
		FROM memories
		WHERE id = ?
	`
	return r.scan(r.db.QueryRow(query, id))
}

// List retrieves the most recent memories, newest first.
func (r *MemoryRepository) List(limit int) ([]*models.Memory, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, category, content, created_at
		FROM memories
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.Memory
	for rows.Next() {
		memory, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}

	return memories, rows.Err()
}

// Delete removes a memory by ID
func (r *MemoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("memory not found: %s", id)
	}

	return nil
}

func (r *MemoryRepository) scan(row rowScanner) (*models.Memory, error) {
	var (
		id, category, content string
		sequence              int
		createdAt             time.Time
	)

	err := row.Scan(&id, &sequence, &category, &content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan memory: %w", err)
	}

	return models.RestoreMemory(id, sequence, category, content, createdAt), nil
}
