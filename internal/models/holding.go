package models

import (
	"fmt"
	"strings"
	"time"
)

// Holding represents a position in the paper portfolio.
//
// One row per symbol; a holding is removed entirely when its share count
// reaches zero, so shares is always positive for persisted rows.
type Holding struct {
	id        string
	sequence  int
	symbol    string
	shares    float64
	avgCost   float64
	createdAt time.Time
	updatedAt time.Time
}

// NewHolding creates a holding for the given symbol.
func NewHolding(symbol string, shares, avgCost float64) *Holding {
	now := time.Now()
	return &Holding{
		symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		shares:    shares,
		avgCost:   avgCost,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreHolding reconstructs a holding from a database row.
func RestoreHolding(id string, sequence int, symbol string, shares, avgCost float64, createdAt, updatedAt time.Time) *Holding {
	return &Holding{
		id:        id,
		sequence:  sequence,
		symbol:    symbol,
		shares:    shares,
		avgCost:   avgCost,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (h *Holding) ID() string           { return h.id }
func (h *Holding) Sequence() int        { return h.sequence }
func (h *Holding) Symbol() string       { return h.symbol }
func (h *Holding) Shares() float64      { return h.shares }
func (h *Holding) AvgCost() float64     { return h.avgCost }
func (h *Holding) CreatedAt() time.Time { return h.createdAt }
func (h *Holding) UpdatedAt() time.Time { return h.updatedAt }

func (h *Holding) SetID(id string)          { h.id = id }
func (h *Holding) SetSequence(seq int)      { h.sequence = seq }
func (h *Holding) SetUpdatedAt(t time.Time) { h.updatedAt = t }

// SetPosition replaces the share count and average cost, bumping updated_at.
func (h *Holding) SetPosition(shares, avgCost float64) {
	h.shares = shares
	h.avgCost = avgCost
	h.updatedAt = time.Now()
}

// CostBasis returns the total amount paid for the position.
func (h *Holding) CostBasis() float64 {
	return h.shares * h.avgCost
}

// Validate checks holding invariants.
func (h *Holding) Validate() error {
	if h.symbol == "" {
		return fmt.Errorf("holding symbol is required")
	}
	if h.shares <= 0 {
		return fmt.Errorf("holding shares must be positive, got %f", h.shares)
	}
	if h.avgCost < 0 {
		return fmt.Errorf("holding avg cost cannot be negative, got %f", h.avgCost)
	}
	return nil
}
