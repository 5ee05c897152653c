// Package repositories provides the persistence layer for the trading agent.
//
// Each repository wraps a *sql.DB and handles one table: holdings, trades,
// thoughts, memories, snapshots, watchlist, and the settings key/value store.
// Entity repositories implement models.Repository[T] plus domain queries
// (sequence cursors for the thought stream, trade rollups, snapshot windows).
//
// Inserts assign a UUID id and a per-table sequence number via [NextSequence].
// Sequences give entities a monotonic ordering that survives identical
// timestamps; the thought stream uses them as its client-facing cursor.
package repositories
