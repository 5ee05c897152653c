package models

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is a point-in-time portfolio valuation for charting.
type Snapshot struct {
	id         string
	sequence   int
	totalValue float64
	cash       float64
	invested   float64
	pnl        float64
	createdAt  time.Time
}

// NewSnapshot creates a snapshot, rounding all amounts to cents.
func NewSnapshot(totalValue, cash, invested, pnl float64) *Snapshot {
	return &Snapshot{
		totalValue: roundCents(totalValue),
		cash:       roundCents(cash),
		invested:   roundCents(invested),
		pnl:        roundCents(pnl),
		createdAt:  time.Now(),
	}
}

// RestoreSnapshot reconstructs a snapshot from a database row.
func RestoreSnapshot(id string, sequence int, totalValue, cash, invested, pnl float64, createdAt time.Time) *Snapshot {
	return &Snapshot{
		id:         id,
		sequence:   sequence,
		totalValue: totalValue,
		cash:       cash,
		invested:   invested,
		pnl:        pnl,
		createdAt:  createdAt,
	}
}

func (s *Snapshot) ID() string           { return s.id }
func (s *Snapshot) Sequence() int        { return s.sequence }
func (s *Snapshot) TotalValue() float64  { return s.totalValue }
func (s *Snapshot) Cash() float64        { return s.cash }
func (s *Snapshot) Invested() float64    { return s.invested }
func (s *Snapshot) PnL() float64         { return s.pnl }
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

func (s *Snapshot) SetID(id string)     { s.id = id }
func (s *Snapshot) SetSequence(seq int) { s.sequence = seq }

// Validate checks snapshot invariants.
func (s *Snapshot) Validate() error {
	if s.totalValue < 0 || s.cash < 0 || s.invested < 0 {
		return fmt.Errorf("snapshot amounts cannot be negative")
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
