package scenarios

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/optimizer"
)

// Repository handles scenario and run-history persistence.
// Database: sentry.db (scenarios, optimization_runs tables)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new scenarios repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "scenarios").Logger(),
	}
}

// Save persists a scenario. A scenario without an ID gets a fresh one;
// an existing ID is updated in place. Returns the stored scenario.
func (r *Repository) Save(s Scenario) (Scenario, error) {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	payload, err := json.Marshal(s.Snapshot)
	if err != nil {
		return s, fmt.Errorf("failed to marshal scenario payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO scenarios (id, name, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, s.ID, s.Name, string(payload),
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return s, fmt.Errorf("failed to save scenario %s: %w", s.ID, err)
	}

	r.log.Info().Str("id", s.ID).Str("name", s.Name).Msg("Scenario saved")
	return s, nil
}

// Get returns a scenario by ID, nil when unknown.
func (r *Repository) Get(id string) (*Scenario, error) {
	var s Scenario
	var payload, createdAt, updatedAt string

	err := r.db.QueryRow(`
		SELECT id, name, payload, created_at, updated_at
		FROM scenarios WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &payload, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(payload), &s.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s payload: %w", id, err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

// List returns all scenarios, newest first, without payload decoding
// errors silently dropped.
func (r *Repository) List() ([]Scenario, error) {
	rows, err := r.db.Query(`
		SELECT id, name, payload, created_at, updated_at
		FROM scenarios ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var result []Scenario
	for rows.Next() {
		var s Scenario
		var payload, createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &payload, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &s.Snapshot); err != nil {
			r.log.Warn().Err(err).Str("id", s.ID).Msg("Skipping scenario with bad payload")
			continue
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		result = append(result, s)
	}
	return result, rows.Err()
}

// Delete removes a scenario by ID.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM scenarios WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", id, err)
	}
	return nil
}

// RecordRun appends an optimizer result to the run history.
func (r *Repository) RecordRun(res optimizer.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal run payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO optimization_runs
			(run_id, state_hash, status, strategy, managed_risk, current_risk,
			 cost, improvement, restarts, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.RunID, res.StateHash, string(res.Status), string(res.Strategy),
		res.ManagedRisk, res.CurrentRisk, res.Cost, res.Improvement,
		res.Restarts, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", res.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT run_id, state_hash, status, strategy, managed_risk,
		       current_risk, cost, improvement, restarts, created_at
		FROM optimization_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var result []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.StateHash, &rec.Status, &rec.Strategy,
			&rec.ManagedRisk, &rec.CurrentRisk, &rec.Cost, &rec.Improvement,
			&rec.Restarts, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}
