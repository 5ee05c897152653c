package models

import (
	"fmt"
	"time"
)

// Thought types, matching the stream the dashboard renders.
const (
	ThoughtThinking = "thinking"
	ThoughtSystem   = "system"
	ThoughtTrade    = "trade"
	ThoughtResearch = "research"
	ThoughtError    = "error"
)

// Thought is one entry in the agent's visible thought stream.
//
// The per-table sequence doubles as the stream cursor: clients poll with
// after_id and receive only thoughts with a larger sequence.
type Thought struct {
	id        string
	sequence  int
	kind      string
	content   string
	metadata  map[string]any
	createdAt time.Time
}

// NewThought creates a thought of the given type.
func NewThought(kind, content string, metadata map[string]any) *Thought {
	if kind == "" {
		kind = ThoughtThinking
	}
	return &Thought{
		kind:      kind,
		content:   content,
		metadata:  metadata,
		createdAt: time.Now(),
	}
}

// RestoreThought reconstructs a thought from a database row.
func RestoreThought(id string, sequence int, kind, content string, metadata map[string]any, createdAt time.Time) *Thought {
	return &Thought{
		id:        id,
		sequence:  sequence,
		kind:      kind,
		content:   content,
		metadata:  metadata,
		createdAt: createdAt,
	}
}

func (t *Thought) ID() string               { return t.id }
func (t *Thought) Sequence() int            { return t.sequence }
func (t *Thought) Kind() string             { return t.kind }
func (t *Thought) Content() string          { return t.content }
func (t *Thought) Metadata() map[string]any { return t.metadata }
func (t *Thought) CreatedAt() time.Time     { return t.createdAt }

func (t *Thought) SetID(id string)     { t.id = id }
func (t *Thought) SetSequence(seq int) { t.sequence = seq }

// Validate checks thought invariants.
func (t *Thought) Validate() error {
	switch t.kind {
	case ThoughtThinking, ThoughtSystem, ThoughtTrade, ThoughtResearch, ThoughtError:
	default:
		return fmt.Errorf("unknown thought type %q", t.kind)
	}
	if t.content == "" {
		return fmt.Errorf("thought content is required")
	}
	return nil
}
