// Package settings persists tunable engine parameters as key/value pairs.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Engine setting keys.
const (
	KeyFocus        = "focus"
	KeyTargetBudget = "target_budget"
	KeyTolerance    = "tolerance"
	KeyHourlyRate   = "hourly_rate"
)

// Defaults used when a key has never been set.
const (
	DefaultFocus        = 0.5
	DefaultTargetBudget = 250000.0
	DefaultTolerance    = 5000.0
	DefaultHourlyRate   = 85.0
)

// EngineSettings is the scalar configuration the risk engine reads on
// every run.
type EngineSettings struct {
	Focus        float64 `json:"focus"`
	TargetBudget float64 `json:"target_budget"`
	Tolerance    float64 `json:"tolerance"`
	HourlyRate   float64 `json:"hourly_rate"`
}

// Repository handles settings database operations.
// Database: sentry.db (settings table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key, nil when unset.
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set sets a setting value
func (r *Repository) Set(key string, value string, description *string) error {
	now := time.Now().Format(time.RFC3339)

	if description != nil {
		_, err := r.db.Exec(`
			INSERT INTO settings (key, value, description, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				description = excluded.description,
				updated_at = excluded.updated_at
		`, key, value, *description, now)
		return err
	}

	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	return err
}

// GetAll retrieves all settings as a map
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return result, nil
}

// GetFloat retrieves a setting value as float
func (r *Repository) GetFloat(key string, defaultValue float64) (float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse float setting")
		return defaultValue, nil
	}

	return floatVal, nil
}

// SetFloat sets a setting value as float
func (r *Repository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64), nil)
}

// Engine loads the scalar engine settings, applying defaults for any
// unset key.
func (r *Repository) Engine() (EngineSettings, error) {
	var s EngineSettings
	var err error

	if s.Focus, err = r.GetFloat(KeyFocus, DefaultFocus); err != nil {
		return s, err
	}
	if s.TargetBudget, err = r.GetFloat(KeyTargetBudget, DefaultTargetBudget); err != nil {
		return s, err
	}
	if s.Tolerance, err = r.GetFloat(KeyTolerance, DefaultTolerance); err != nil {
		return s, err
	}
	if s.HourlyRate, err = r.GetFloat(KeyHourlyRate, DefaultHourlyRate); err != nil {
		return s, err
	}
	return s, nil
}

// SaveEngine persists the scalar engine settings.
func (r *Repository) SaveEngine(s EngineSettings) error {
	pairs := map[string]float64{
		KeyFocus:        s.Focus,
		KeyTargetBudget: s.TargetBudget,
		KeyTolerance:    s.Tolerance,
		KeyHourlyRate:   s.HourlyRate,
	}
	for key, value := range pairs {
		if err := r.SetFloat(key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return nil
}
