package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrInvalidPort   = fmt.Errorf("invalid listen port")

	// Storage errors
	ErrDataDir        = fmt.Errorf("data directory unavailable")
	ErrMigration      = fmt.Errorf("migration failed")
	ErrSettingMissing = fmt.Errorf("setting not found")

	// Market data and external service errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrQuoteUnavailable = fmt.Errorf("quote unavailable")
	ErrLLMUnavailable   = fmt.Errorf("language model unavailable")
	ErrNotifierDisabled = fmt.Errorf("notifications disabled")

	// Trading errors
	ErrInsufficientFunds  = fmt.Errorf("insufficient cash")
	ErrInsufficientShares = fmt.Errorf("insufficient shares")
	ErrUnknownSymbol      = fmt.Errorf("unknown symbol")
	ErrInvalidRiskProfile = fmt.Errorf("invalid risk profile")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
