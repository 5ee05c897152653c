// Package models defines domain entities and persistence interfaces for the StockMind trading agent.
//
// The package contains two categories of types:
//
// 1. Persistent Entities: Database-backed models with full lifecycle management
//   - [Holding] : A position in the paper portfolio (symbol, shares, average cost)
//   - [Trade] : An executed buy or sell with price, total, and the agent's reasoning
//   - [Thought] : A typed entry in the agent's thought stream (thinking, trade, research, error, system)
//   - [Memory] : A lesson or strategy note the agent chose to remember
//   - [Snapshot] : A point-in-time portfolio valuation for charting
//   - [WatchlistEntry] : A symbol the agent keeps an eye on
//
// 2. Value types: [TrackRecord] summarizes all-time trading activity for prompts and the API.
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, and validation.
// The [Repository] interface defines standard CRUD operations for database access; entity repositories
// extend it with domain queries (cursors, rollups).
package models
