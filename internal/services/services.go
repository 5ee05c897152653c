package services

import (
	"context"
	"time"
)

// MarketService provides stock quotes, research detail and headlines.
type MarketService interface {
	// Quotes fetches current quotes for the given symbols. Symbols that
	// cannot be quoted are omitted from the result rather than failing the
	// whole batch.
	Quotes(ctx context.Context, symbols []string) (map[string]*Quote, error)

	// Detail fetches a month of history for a symbol and derives research
	// analytics from it.
	Detail(ctx context.Context, symbol string) (*StockDetail, error)

	// News fetches recent headlines for a symbol.
	News(ctx context.Context, symbol string) ([]NewsItem, error)

	// Overview fetches quotes for the major US indices.
	Overview(ctx context.Context) ([]IndexQuote, error)

	// Name returns the provider name (e.g. "Yahoo Finance")
	Name() string
}

// LLMService produces text completions for the agent's trading sessions.
type LLMService interface {
	// Complete sends a system prompt and user prompt, returning the model's
	// text response.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Name returns the provider name (e.g. "Anthropic")
	Name() string
}

// Notifier posts trade and research updates to an external feed.
//
// Implementations must fail gracefully: a notification error should never
// abort the trade that triggered it.
type Notifier interface {
	// Post publishes a message, truncating to the platform limit.
	Post(ctx context.Context, text string) error

	// Enabled reports whether the notifier is configured and active.
	Enabled() bool

	// Name returns the platform name (e.g. "X")
	Name() string
}

// Quote is a point-in-time price for a single symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    int64   `json:"volume"`
}

// StockDetail carries research analytics derived from a month of daily closes.
type StockDetail struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	MonthChangePct   float64 `json:"month_change_pct"`
	SMA5             float64 `json:"sma_5"`
	SMA20            float64 `json:"sma_20"`
	Volatility       float64 `json:"volatility"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
}

// NewsItem is a single headline for a symbol.
type NewsItem struct {
	Title     string    `json:"title"`
	Publisher string    `json:"publisher"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// IndexQuote is a market-overview entry for a major index.
type IndexQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	ChangePct float64 `json:"change_pct"`
}

// IsMarketHours reports whether t falls inside regular US trading hours,
// Monday through Friday between 09:00 and 16:59. This is a rough check; it
// ignores market holidays.
func IsMarketHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= 9 && t.Hour() <= 16
}
