package models

import (
	"strings"
	"time"
)

// WatchlistEntry is a symbol the agent tracks for quotes and trade ideas.
//
// Keyed by symbol rather than a generated ID; adding an existing symbol is a
// no-op at the persistence layer.
type WatchlistEntry struct {
	Symbol  string
	AddedAt time.Time
}

// NewWatchlistEntry normalizes the symbol and stamps the entry.
func NewWatchlistEntry(symbol string) WatchlistEntry {
	return WatchlistEntry{
		Symbol:  strings.ToUpper(strings.TrimSpace(symbol)),
		AddedAt: time.Now(),
	}
}
