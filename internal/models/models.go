// package models defines the data model for the StockMind trading agent
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the trading service.
// Implementations include Holding, Trade, Thought, Memory, Snapshot.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	Sequence() int        // Sequence returns the monotonic per-table counter assigned on insert
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error     // Create inserts a new model into the database
	Get(id string) (T, error) // Get retrieves a model by its ID
	List(limit int) ([]T, error)
	Delete(id string) error // Delete removes a model from the database by its ID
}

// TrackRecord summarizes all-time trading activity, used in agent prompts and the status API.
type TrackRecord struct {
	TotalTrades   int      `json:"total_trades"`
	TotalBuys     int      `json:"total_buys"`
	TotalSells    int      `json:"total_sells"`
	SymbolsTraded []string `json:"symbols_traded"`
	FirstTrade    string   `json:"first_trade_date,omitempty"`
	TotalBought   float64  `json:"total_bought"`
	TotalSold     float64  `json:"total_sold"`
}
