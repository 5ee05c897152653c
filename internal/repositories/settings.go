package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/stockmind/internal/shared"
)

// Settings keys
const (
	KeyCashBalance = "cash_balance"
	KeyRiskProfile = "risk_profile"
)

// DefaultRiskProfile applies until the user picks one.
const DefaultRiskProfile = "moderate"

// SettingsRepository persists process-wide settings in a key/value table:
// the cash balance and the risk profile.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new [SettingsRepository] with the given database connection
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a raw setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", shared.ErrSettingMissing, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// Set stores a setting, replacing any existing value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// CashBalance returns the current virtual cash balance, or 0 when unset.
func (r *SettingsRepository) CashBalance() (float64, error) {
	value, err := r.Get(KeyCashBalance)
	if err != nil {
		if isMissing(err) {
			return 0, nil
		}
		return 0, err
	}

	balance, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cash balance %q: %w", value, err)
	}
	return balance, nil
}

// SetCashBalance stores the virtual cash balance.
func (r *SettingsRepository) SetCashBalance(amount float64) error {
	return r.Set(KeyCashBalance, strconv.FormatFloat(amount, 'f', -1, 64))
}

// RiskProfile returns the active risk profile, defaulting to moderate.
func (r *SettingsRepository) RiskProfile() (string, error) {
	value, err := r.Get(KeyRiskProfile)
	if err != nil {
		if isMissing(err) {
			return DefaultRiskProfile, nil
		}
		return "", err
	}
	return value, nil
}

// SetRiskProfile stores the risk profile after validating it.
func (r *SettingsRepository) SetRiskProfile(profile string) error {
	switch profile {
	case "safe", "moderate", "aggressive":
	default:
		return fmt.Errorf("%w: %q", shared.ErrInvalidRiskProfile, profile)
	}
	return r.Set(KeyRiskProfile, profile)
}

// EnsureDefaults seeds the cash balance on first init. Idempotent: an
// existing balance is never overwritten.
func (r *SettingsRepository) EnsureDefaults(startingBalance float64) (bool, error) {
	_, err := r.Get(KeyCashBalance)
	if err == nil {
		return false, nil
	}
	if !isMissing(err) {
		return false, err
	}

	if err := r.SetCashBalance(startingBalance); err != nil {
		return false, err
	}
	return true, nil
}

func isMissing(err error) bool {
	return errors.Is(err, shared.ErrSettingMissing)
}
