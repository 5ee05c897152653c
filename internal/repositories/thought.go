package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/shared"
)

// ThoughtRepository implements [models.Repository] for the agent's [models.Thought] stream.
type ThoughtRepository struct {
	db *sql.DB
}

// NewThoughtRepository creates a new [ThoughtRepository] with the given database connection
func NewThoughtRepository(db *sql.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

// Create inserts a new thought into the database with generated ID and sequence
func (r *ThoughtRepository) Create(thought *models.Thought) error {
	sequence, err := NextSequence(r.db, "thoughts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	thought.SetID(shared.GenerateID())
	thought.SetSequence(sequence)

	if err := thought.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var metadata any
	if thought.Metadata() != nil {
		encoded, err := json.Marshal(thought.Metadata())
		if err != nil {
			return fmt.Errorf("failed to encode thought metadata: %w", err)
		}
		metadata = string(encoded)
	}

	query := `
		INSERT INTO thoughts (id, sequence, type, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		thought.ID(),
		thought.Sequence(),
		thought.Kind(),
		thought.Content(),
		metadata,
		thought.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert thought: %w", err)
	}

	return nil
}

// Get retrieves a thought by ID
func (r *ThoughtRepository) Get(id string) (*models.Thought, error) {
	query := `
		SELECT id, sequence, type, content, metadata, created_at
		FROM thoughts
		WHERE id = ?
	`
	return r.scan(r.db.QueryRow(query, id))
}

// List retrieves the most recent thoughts, newest first.
func (r *ThoughtRepository) List(limit int) ([]*models.Thought, error) {
	return r.ListAfter(0, limit)
}

// ListAfter retrieves up to limit thoughts with sequence greater than after,
// newest first. This is the backing query for the thought feed and its SSE
// stream, with after acting as the client cursor.
func (r *ThoughtRepository) ListAfter(after, limit int) ([]*models.Thought, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, sequence, type, content, metadata, created_at
		FROM thoughts
		WHERE sequence > ?
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list thoughts: %w", err)
	}
	defer rows.Close()

	var thoughts []*models.Thought
	for rows.Next() {
		thought, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		thoughts = append(thoughts, thought)
	}

	return thoughts, rows.Err()
}

// Delete removes a thought by ID
func (r *ThoughtRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM thoughts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete thought: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("thought not found: %s", id)
	}

	return nil
}

func (r *ThoughtRepository) scan(row rowScanner) (*models.Thought, error) {
	var (
		id, kind, content string
		sequence          int
		metadata          sql.NullString
		createdAt         time.Time
	)

	err := row.Scan(&id, &sequence, &kind, &content, &metadata, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan thought: %w", err)
	}

	var decoded map[string]any
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &decoded); err != nil {
			return nil, fmt.Errorf("corrupt thought metadata: %w", err)
		}
	}

	return models.RestoreThought(id, sequence, kind, content, decoded, createdAt), nil
}
