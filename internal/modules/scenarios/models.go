// Package scenarios persists named engine snapshots and optimization run
// history.
package scenarios

import (
	"time"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/portfolio"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
)

// Snapshot captures everything needed to reproduce an engine state: the
// weight configuration, the portfolio selection, both allocation vectors,
// and the scalar settings.
type Snapshot struct {
	Weights               scoring.WeightVector         `json:"weights"`
	Selection             []portfolio.SelectedUnit     `json:"selection"`
	Tools                 coverage.ToolVector          `json:"tools"`
	Responses             effectiveness.ResponseVector `json:"responses"`
	ToolEffectiveness     coverage.ToolVector          `json:"tool_effectiveness"`
	ResponseEffectiveness effectiveness.ResponseVector `json:"response_effectiveness"`
	Settings              settings.EngineSettings      `json:"settings"`
}

// DefaultSnapshot returns the stock engine state: default weights, an
// empty selection, a modest uniform allocation, and mid-range
// effectiveness assumptions.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Weights:               scoring.DefaultWeights,
		Tools:                 coverage.ToolVector{40, 30, 20, 20, 50, 60},
		Responses:             effectiveness.ResponseVector{40, 25, 20, 15, 10, 10},
		ToolEffectiveness:     coverage.ToolVector{70, 55, 75, 50, 30, 25},
		ResponseEffectiveness: effectiveness.ResponseVector{65, 55, 70, 50, 40, 30},
		Settings: settings.EngineSettings{
			Focus:        settings.DefaultFocus,
			TargetBudget: settings.DefaultTargetBudget,
			Tolerance:    settings.DefaultTolerance,
			HourlyRate:   settings.DefaultHourlyRate,
		},
	}
}

// Scenario is a named, persisted snapshot.
type Scenario struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunRecord is one row of optimization history.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	StateHash   string    `json:"state_hash"`
	Status      string    `json:"status"`
	Strategy    string    `json:"strategy"`
	ManagedRisk float64   `json:"managed_risk"`
	CurrentRisk float64   `json:"current_risk"`
	Cost        float64   `json:"cost"`
	Improvement float64   `json:"improvement"`
	Restarts    int       `json:"restarts"`
	CreatedAt   time.Time `json:"created_at"`
}
