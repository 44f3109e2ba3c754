// Package services ties the engine modules to persistence: it loads the
// working state, recomputes derived scores, and drives optimization runs.
package services

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/costs"
	"github.com/aristath/chain-sentry/internal/modules/managedrisk"
	"github.com/aristath/chain-sentry/internal/modules/optimizer"
	"github.com/aristath/chain-sentry/internal/modules/portfolio"
	"github.com/aristath/chain-sentry/internal/modules/scenarios"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
)

// CurrentScenarioID is the fixed scenario row holding the working state.
// Named scenarios are copies of it; the engine always operates on this
// one.
const CurrentScenarioID = "current"

// Engine coordinates the scoring, portfolio, and optimizer modules over
// the persisted working state.
type Engine struct {
	units        *scoring.Repository
	scenarioRepo *scenarios.Repository
	settingsRepo *settings.Repository
	scorer       *scoring.Scorer
	aggregator   *portfolio.Aggregator
	opt          *optimizer.Optimizer
	log          zerolog.Logger
}

// NewEngine creates the engine service.
func NewEngine(
	units *scoring.Repository,
	scenarioRepo *scenarios.Repository,
	settingsRepo *settings.Repository,
	opt *optimizer.Optimizer,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		units:        units,
		scenarioRepo: scenarioRepo,
		settingsRepo: settingsRepo,
		scorer:       scoring.NewScorer(),
		aggregator:   portfolio.NewAggregator(),
		opt:          opt,
		log:          log.With().Str("service", "engine").Logger(),
	}
}

// CurrentSnapshot loads the working state, falling back to defaults plus
// the persisted scalar settings when none has been saved yet.
func (e *Engine) CurrentSnapshot() (scenarios.Snapshot, error) {
	stored, err := e.scenarioRepo.Get(CurrentScenarioID)
	if err != nil {
		return scenarios.Snapshot{}, err
	}
	if stored != nil {
		return stored.Snapshot, nil
	}

	snap := scenarios.DefaultSnapshot()
	engineSettings, err := e.settingsRepo.Engine()
	if err != nil {
		return snap, err
	}
	snap.Settings = engineSettings
	return snap, nil
}

// SaveCurrent persists the working state and mirrors its scalar settings
// into the settings table.
func (e *Engine) SaveCurrent(snap scenarios.Snapshot) error {
	if err := e.Rescore(&snap); err != nil {
		return err
	}
	if _, err := e.scenarioRepo.Save(scenarios.Scenario{
		ID:       CurrentScenarioID,
		Name:     "current",
		Snapshot: snap,
	}); err != nil {
		return err
	}
	return e.settingsRepo.SaveEngine(snap.Settings)
}

// Rescore recomputes every selected unit's score from current indicators
// and weights. Scores are derived state; this is the only way they change.
func (e *Engine) Rescore(snap *scenarios.Snapshot) error {
	if err := snap.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	for i, su := range snap.Selection {
		unit, err := e.units.Get(su.Code)
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("unknown unit in selection: %s", su.Code)
		}
		snap.Selection[i].Score = e.scorer.Score(*unit, snap.Weights)
		if snap.Selection[i].Volume <= 0 {
			snap.Selection[i].Volume = portfolio.DefaultVolume
		}
	}
	return nil
}

// Summary aggregates the working selection into portfolio figures.
func (e *Engine) Summary(snap scenarios.Snapshot) portfolio.Summary {
	return e.aggregator.Aggregate(snap.Selection)
}

// BuildOptimizerInput assembles the optimizer input from a snapshot.
func (e *Engine) BuildOptimizerInput(snap scenarios.Snapshot) (optimizer.Input, error) {
	if len(snap.Selection) == 0 {
		return optimizer.Input{}, fmt.Errorf("cannot optimize an empty selection")
	}

	summary := e.aggregator.Aggregate(snap.Selection)

	units := make([]managedrisk.UnitRisk, len(snap.Selection))
	for i, su := range snap.Selection {
		units[i] = managedrisk.UnitRisk{Code: su.Code, Baseline: su.Score, Volume: su.Volume}
	}

	assumptions := costs.DefaultAssumptions()
	assumptions.HourlyRate = snap.Settings.HourlyRate
	assumptions.UnitCount = len(snap.Selection)

	return optimizer.Input{
		Units:        units,
		BaselineRisk: summary.BaselineRisk,
		Focus:        snap.Settings.Focus,
		Current: optimizer.Candidate{
			Tools:     snap.Tools,
			Responses: snap.Responses,
		},
		ToolEffectiveness:     snap.ToolEffectiveness,
		ResponseEffectiveness: snap.ResponseEffectiveness,
		Assumptions:           assumptions,
		TargetBudget:          snap.Settings.TargetBudget,
		Tolerance:             snap.Settings.Tolerance,
	}, nil
}

// Optimize runs the optimizer against the current working state and
// records the run. The working allocation is not modified; callers apply
// a proposal explicitly.
func (e *Engine) Optimize() (optimizer.Result, error) {
	snap, err := e.CurrentSnapshot()
	if err != nil {
		return optimizer.Result{}, err
	}
	if err := e.Rescore(&snap); err != nil {
		return optimizer.Result{}, err
	}

	in, err := e.BuildOptimizerInput(snap)
	if err != nil {
		return optimizer.Result{}, err
	}

	res := e.opt.Optimize(in)

	if res.Status != optimizer.StatusAlreadyOptimized {
		if err := e.scenarioRepo.RecordRun(res); err != nil {
			e.log.Error().Err(err).Str("run_id", res.RunID).Msg("Failed to record optimization run")
		}
	}
	return res, nil
}

// ApplyResult adopts an optimization proposal as the working allocation.
func (e *Engine) ApplyResult(res optimizer.Result) error {
	snap, err := e.CurrentSnapshot()
	if err != nil {
		return err
	}
	snap.Tools = res.Allocation.Tools
	snap.Responses = res.Allocation.Responses
	return e.SaveCurrent(snap)
}
