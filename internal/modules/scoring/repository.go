package scoring

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles unit persistence.
// Database: sentry.db (units table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new unit repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "units").Logger(),
	}
}

// GetAll returns every stored unit ordered by code.
func (r *Repository) GetAll() ([]Unit, error) {
	rows, err := r.db.Query(`
		SELECT code, name, governance, labor_rights, corruption, conflict, transparency
		FROM units
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(
			&u.Code, &u.Name,
			&u.Indicators[IndicatorGovernance],
			&u.Indicators[IndicatorLaborRights],
			&u.Indicators[IndicatorCorruption],
			&u.Indicators[IndicatorConflict],
			&u.Indicators[IndicatorTransparency],
		); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units: %w", err)
	}
	return units, nil
}

// Get returns a single unit by code, or nil when unknown.
func (r *Repository) Get(code string) (*Unit, error) {
	var u Unit
	err := r.db.QueryRow(`
		SELECT code, name, governance, labor_rights, corruption, conflict, transparency
		FROM units
		WHERE code = ?
	`, code).Scan(
		&u.Code, &u.Name,
		&u.Indicators[IndicatorGovernance],
		&u.Indicators[IndicatorLaborRights],
		&u.Indicators[IndicatorCorruption],
		&u.Indicators[IndicatorConflict],
		&u.Indicators[IndicatorTransparency],
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit %s: %w", code, err)
	}
	return &u, nil
}

// Upsert inserts or replaces a unit. The unit is validated before it
// touches the database.
func (r *Repository) Upsert(u Unit) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid unit %s: %w", u.Code, err)
	}

	_, err := r.db.Exec(`
		INSERT INTO units (code, name, governance, labor_rights, corruption, conflict, transparency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			governance = excluded.governance,
			labor_rights = excluded.labor_rights,
			corruption = excluded.corruption,
			conflict = excluded.conflict,
			transparency = excluded.transparency
	`, u.Code, u.Name,
		u.Indicators[IndicatorGovernance],
		u.Indicators[IndicatorLaborRights],
		u.Indicators[IndicatorCorruption],
		u.Indicators[IndicatorConflict],
		u.Indicators[IndicatorTransparency],
	)
	if err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", u.Code, err)
	}
	return nil
}

// Delete removes a unit by code.
func (r *Repository) Delete(code string) error {
	if _, err := r.db.Exec("DELETE FROM units WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to delete unit %s: %w", code, err)
	}
	return nil
}
