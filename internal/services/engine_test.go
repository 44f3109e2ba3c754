package services

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/chain-sentry/internal/database"
	"github.com/aristath/chain-sentry/internal/modules/optimizer"
	"github.com/aristath/chain-sentry/internal/modules/portfolio"
	"github.com/aristath/chain-sentry/internal/modules/scenarios"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
)

func testEngine(t *testing.T) (*Engine, *scoring.Repository) {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "sentry.db"),
		Name: "sentry",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	units := scoring.NewRepository(db.Conn(), log)

	cfg := optimizer.DefaultConfig()
	cfg.MaxRestarts = 1
	cfg.AnnealingIterations = 30
	cfg.PopulationSize = 8
	cfg.Generations = 4
	cfg.ElitismCount = 2

	engine := NewEngine(
		units,
		scenarios.NewRepository(db.Conn(), log),
		settings.NewRepository(db.Conn(), log),
		optimizer.New(cfg, log),
		log,
	)
	return engine, units
}

func seedUnits(t *testing.T, units *scoring.Repository) {
	t.Helper()
	seed := []scoring.Unit{
		{Code: "VNM", Name: "Vietnam", Indicators: [scoring.IndicatorCount]float64{70, 80, 65, 40, 60}},
		{Code: "BGD", Name: "Bangladesh", Indicators: [scoring.IndicatorCount]float64{65, 85, 70, 35, 55}},
		{Code: "MEX", Name: "Mexico", Indicators: [scoring.IndicatorCount]float64{50, 45, 60, 55, 40}},
	}
	for _, u := range seed {
		require.NoError(t, units.Upsert(u))
	}
}

func TestCurrentSnapshotDefaults(t *testing.T) {
	engine, _ := testEngine(t)

	snap, err := engine.CurrentSnapshot()
	require.NoError(t, err)

	assert.Equal(t, scoring.DefaultWeights, snap.Weights)
	assert.Empty(t, snap.Selection)
	assert.Equal(t, settings.DefaultTargetBudget, snap.Settings.TargetBudget)
}

func TestSaveCurrentRescoresSelection(t *testing.T) {
	engine, units := testEngine(t)
	seedUnits(t, units)

	snap, err := engine.CurrentSnapshot()
	require.NoError(t, err)
	snap.Selection = []portfolio.SelectedUnit{
		{Code: "VNM"},
		{Code: "BGD", Volume: 20},
	}

	require.NoError(t, engine.SaveCurrent(snap))

	loaded, err := engine.CurrentSnapshot()
	require.NoError(t, err)
	require.Len(t, loaded.Selection, 2)

	// Scores recomputed from indicators, default volume filled in.
	assert.Positive(t, loaded.Selection[0].Score)
	assert.Equal(t, portfolio.DefaultVolume, loaded.Selection[0].Volume)
	assert.Equal(t, 20.0, loaded.Selection[1].Volume)

	// Scalar settings mirrored into the settings table.
	engineSettings, err := engine.settingsRepo.Engine()
	require.NoError(t, err)
	assert.Equal(t, loaded.Settings, engineSettings)
}

func TestRescoreRejectsUnknownUnit(t *testing.T) {
	engine, units := testEngine(t)
	seedUnits(t, units)

	snap := scenarios.DefaultSnapshot()
	snap.Selection = []portfolio.SelectedUnit{{Code: "ZZZ"}}

	err := engine.Rescore(&snap)
	assert.ErrorContains(t, err, "ZZZ")
}

func TestBuildOptimizerInputRequiresSelection(t *testing.T) {
	engine, _ := testEngine(t)

	_, err := engine.BuildOptimizerInput(scenarios.DefaultSnapshot())
	assert.Error(t, err)
}

func TestOptimizeRecordsRun(t *testing.T) {
	engine, units := testEngine(t)
	seedUnits(t, units)

	snap, err := engine.CurrentSnapshot()
	require.NoError(t, err)
	snap.Selection = []portfolio.SelectedUnit{{Code: "VNM"}, {Code: "BGD"}, {Code: "MEX"}}
	snap.Settings.TargetBudget = 300000
	snap.Settings.Tolerance = 120000
	require.NoError(t, engine.SaveCurrent(snap))

	res, err := engine.Optimize()
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.NotEmpty(t, res.StateHash)

	runs, err := engine.scenarioRepo.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)

	// Unchanged state answers from the cache and records nothing new.
	again, err := engine.Optimize()
	require.NoError(t, err)
	assert.Equal(t, optimizer.StatusAlreadyOptimized, again.Status)

	runs, err = engine.scenarioRepo.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestApplyResultUpdatesAllocation(t *testing.T) {
	engine, units := testEngine(t)
	seedUnits(t, units)

	snap, err := engine.CurrentSnapshot()
	require.NoError(t, err)
	snap.Selection = []portfolio.SelectedUnit{{Code: "VNM"}}
	require.NoError(t, engine.SaveCurrent(snap))

	res := optimizer.Result{
		Allocation: optimizer.Candidate{},
	}
	res.Allocation.Tools[0] = 77
	res.Allocation.Responses[0] = 77

	require.NoError(t, engine.ApplyResult(res))

	loaded, err := engine.CurrentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 77.0, loaded.Tools[0])
	assert.Equal(t, 77.0, loaded.Responses[0])
}
