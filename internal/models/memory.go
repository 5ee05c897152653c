package models

import (
	"fmt"
	"time"
)

// DefaultMemoryCategory is used when the agent saves a note without one.
const DefaultMemoryCategory = "lesson"

// Memory is a persistent lesson or strategy note the agent saved for itself.
type Memory struct {
	id        string
	sequence  int
	category  string
	content   string
	createdAt time.Time
}

// NewMemory creates a memory in the given category.
func NewMemory(category, content string) *Memory {
	if category == "" {
		category = DefaultMemoryCategory
	}
	return &Memory{
		category:  category,
		content:   content,
		createdAt: time.Now(),
	}
}

// RestoreMemory reconstructs a memory from a database row.
func RestoreMemory(id string, sequence int, category, content string, createdAt time.Time) *Memory {
	return &Memory{
		id:        id,
		sequence:  sequence,
		category:  category,
		content:   content,
		createdAt: createdAt,
	}
}

func (m *Memory) ID() string           { return m.id }
func (m *Memory) Sequence() int        { return m.sequence }
func (m *Memory) Category() string     { return m.category }
func (m *Memory) Content() string      { return m.content }
func (m *Memory) CreatedAt() time.Time { return m.createdAt }

func (m *Memory) SetID(id string)     { m.id = id }
func (m *Memory) SetSequence(seq int) { m.sequence = seq }

// Validate checks memory invariants.
func (m *Memory) Validate() error {
	if m.content == "" {
		return fmt.Errorf("memory content is required")
	}
	return nil
}
