package models

import (
	"fmt"
	"strings"
	"time"
)

// Trade actions
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Trade represents an executed virtual trade.
type Trade struct {
	id        string
	sequence  int
	symbol    string
	action    string
	shares    float64
	price     float64
	total     float64
	reasoning string
	createdAt time.Time
}

// NewTrade creates a trade record for an executed order.
func NewTrade(symbol, action string, shares, price, total float64, reasoning string) *Trade {
	return &Trade{
		symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		action:    action,
		shares:    shares,
		price:     price,
		total:     total,
		reasoning: reasoning,
		createdAt: time.Now(),
	}
}

// RestoreTrade reconstructs a trade from a database row.
func RestoreTrade(id string, sequence int, symbol, action string, shares, price, total float64, reasoning string, createdAt time.Time) *Trade {
	return &Trade{
		id:        id,
		sequence:  sequence,
		symbol:    symbol,
		action:    action,
		shares:    shares,
		price:     price,
		total:     total,
		reasoning: reasoning,
		createdAt: createdAt,
	}
}

func (t *Trade) ID() string           { return t.id }
func (t *Trade) Sequence() int        { return t.sequence }
func (t *Trade) Symbol() string       { return t.symbol }
func (t *Trade) Action() string       { return t.action }
func (t *Trade) Shares() float64      { return t.shares }
func (t *Trade) Price() float64       { return t.price }
func (t *Trade) Total() float64       { return t.total }
func (t *Trade) Reasoning() string    { return t.reasoning }
func (t *Trade) CreatedAt() time.Time { return t.createdAt }

func (t *Trade) SetID(id string)     { t.id = id }
func (t *Trade) SetSequence(seq int) { t.sequence = seq }

// Validate checks trade invariants.
func (t *Trade) Validate() error {
	if t.symbol == "" {
		return fmt.Errorf("trade symbol is required")
	}
	if t.action != ActionBuy && t.action != ActionSell {
		return fmt.Errorf("trade action must be %q or %q, got %q", ActionBuy, ActionSell, t.action)
	}
	if t.shares <= 0 {
		return fmt.Errorf("trade shares must be positive, got %f", t.shares)
	}
	if t.price <= 0 {
		return fmt.Errorf("trade price must be positive, got %f", t.price)
	}
	return nil
}
