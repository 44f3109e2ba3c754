package managedrisk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/portfolio"
)

func newTestCalculator() *Calculator {
	return NewCalculator(effectiveness.NewAggregator(), zerolog.Nop())
}

// buildInput distributes coverage for the given units and assembles a full
// calculator input, mirroring how the engine wires the pipeline.
func buildInput(t *testing.T, units []UnitRisk, focusLevel float64) Input {
	t.Helper()

	exposures := make([]coverage.UnitExposure, len(units))
	scores := make([]portfolio.SelectedUnit, len(units))
	for i, u := range units {
		exposures[i] = coverage.UnitExposure{Code: u.Code, Risk: u.Baseline, Volume: u.Volume}
		scores[i] = portfolio.SelectedUnit{Code: u.Code, Volume: u.Volume, Score: u.Baseline}
	}
	summary := portfolio.NewAggregator().Aggregate(scores)

	mix := coverage.ToolVector{40, 30, 25, 25, 50, 60}
	dist := coverage.NewDistributor(zerolog.Nop()).Distribute(exposures, summary.BaselineRisk, focusLevel, mix)

	return Input{
		Units:                 units,
		Coverage:              dist,
		ToolEffectiveness:     coverage.ToolVector{60, 50, 70, 40, 30, 20},
		ResponseAllocation:    effectiveness.ResponseVector{30, 25, 20, 10, 10, 5},
		ResponseEffectiveness: effectiveness.ResponseVector{70, 60, 65, 50, 55, 40},
		Focus:                 focusLevel,
		BaselineRisk:          summary.BaselineRisk,
	}
}

func TestCalculate_ReductionWithinCapAndFloor(t *testing.T) {
	calc := newTestCalculator()
	units := []UnitRisk{
		{Code: "BD", Baseline: 85, Volume: 10},
		{Code: "VN", Baseline: 55, Volume: 20},
		{Code: "PL", Baseline: 25, Volume: 15},
	}

	result := calc.Calculate(buildInput(t, units, 0.5))
	require.Len(t, result.Units, 3)

	for _, ur := range result.Units {
		assert.GreaterOrEqual(t, ur.Managed, ur.Baseline*FloorRatio-1e-9,
			"%s fell below the floor", ur.Code)
		assert.LessOrEqual(t, ur.Reduction, CapMaxReduction+1e-9)
		assert.LessOrEqual(t, ur.Managed, ur.Baseline+1e-9,
			"%s managed risk exceeded baseline", ur.Code)
	}
}

func TestCalculate_ProgressiveCapShrinksWithBaseline(t *testing.T) {
	assert.InDelta(t, CapMaxReduction, progressiveCap(0), 1e-9)
	assert.InDelta(t, 0.60, progressiveCap(50), 1e-9)
	assert.InDelta(t, CapMinReduction, progressiveCap(100), 1e-9)
	// Clamped outside the scale.
	assert.InDelta(t, CapMinReduction, progressiveCap(250), 1e-9)
}

func TestCalculate_ZeroFocusIsNeutral(t *testing.T) {
	// With focus 0 the focus multiplier must reduce to exactly 1 for
	// every unit: managed-risk differences then stem only from each
	// unit's own baseline, not from redistribution.
	calc := newTestCalculator()

	assert.InDelta(t, 1.0, calc.focusMultiplier(85, 50, 0), 1e-9)
	assert.InDelta(t, 1.0, calc.focusMultiplier(10, 50, 0), 1e-9)

	units := []UnitRisk{
		{Code: "BD", Baseline: 85, Volume: 10},
		{Code: "VN", Baseline: 55, Volume: 10},
	}
	result := calc.Calculate(buildInput(t, units, 0))

	// Same coverage mix and same reduction pipeline; the higher-baseline
	// unit keeps proportionally-consistent managed risk.
	assert.Greater(t, result.Units[0].Managed, result.Units[1].Managed)
}

func TestCalculate_HighRiskBonusAboveGate(t *testing.T) {
	calc := newTestCalculator()

	blend := calc.focusMultiplier(69.9, 50, 0.7)
	bonus := calc.focusMultiplier(70, 50, 0.7)

	// Crossing the score threshold at high focus applies the bonus on
	// top of a nearly identical blend.
	assert.Greater(t, bonus, blend)
	assert.InDelta(t, BonusMultiplier, bonus/blend, 0.01)
}

func TestCalculate_RankPreservation(t *testing.T) {
	// Critical invariant: for any two units at any focus, higher baseline
	// risk must not end up with lower managed risk beyond epsilon.
	calc := newTestCalculator()
	units := []UnitRisk{
		{Code: "BD", Baseline: 90, Volume: 5},
		{Code: "KH", Baseline: 72, Volume: 10},
		{Code: "VN", Baseline: 55, Volume: 20},
		{Code: "IN", Baseline: 54, Volume: 8},
		{Code: "PL", Baseline: 20, Volume: 15},
	}

	for _, f := range []float64{0, 0.25, 0.5, 0.61, 0.75, 0.9, 1.0} {
		result := calc.Calculate(buildInput(t, units, f))

		for i := range result.Units {
			for j := range result.Units {
				if result.Units[i].Baseline > result.Units[j].Baseline {
					assert.GreaterOrEqualf(t,
						result.Units[i].Managed, result.Units[j].Managed-RankEpsilon,
						"focus %.2f: %s (baseline %.0f) below %s (baseline %.0f)",
						f, result.Units[i].Code, result.Units[i].Baseline,
						result.Units[j].Code, result.Units[j].Baseline)
				}
			}
		}
	}
}

func TestPreserveRank_TransitiveOverThreeUnits(t *testing.T) {
	// The single descending walk must leave a transitively consistent
	// ordering, not just adjacent-pair correctness.
	calc := newTestCalculator()
	results := []UnitResult{
		{Code: "A", Baseline: 90, Managed: 40},
		{Code: "B", Baseline: 80, Managed: 55}, // inverted vs A
		{Code: "C", Baseline: 70, Managed: 54}, // inverted vs A after B is fixed
	}

	calc.preserveRank(results)

	assert.InDelta(t, 40.0, results[0].Managed, 1e-9)
	assert.InDelta(t, 39.5, results[1].Managed, 1e-9)
	assert.InDelta(t, 39.0, results[2].Managed, 1e-9)
	assert.True(t, results[1].RankAdjusted)
	assert.True(t, results[2].RankAdjusted)

	// Non-increasing along descending baseline, transitively.
	assert.GreaterOrEqual(t, results[0].Managed, results[1].Managed)
	assert.GreaterOrEqual(t, results[1].Managed, results[2].Managed)
}

func TestCalculate_ZeroBaselineUnitsUntouched(t *testing.T) {
	calc := newTestCalculator()
	units := []UnitRisk{
		{Code: "BD", Baseline: 60, Volume: 10},
		{Code: "XX", Baseline: 0, Volume: 10},
	}

	result := calc.Calculate(buildInput(t, units, 0.8))
	assert.Equal(t, 0.0, result.Units[1].Managed)
	assert.Equal(t, 0.0, result.Units[1].Reduction)
}

func TestCalculate_PortfolioManagedIsVolumeWeighted(t *testing.T) {
	calc := newTestCalculator()
	units := []UnitRisk{
		{Code: "BD", Baseline: 80, Volume: 10},
		{Code: "VN", Baseline: 40, Volume: 30},
	}

	result := calc.Calculate(buildInput(t, units, 0.4))

	expected := (result.Units[0].Managed*10 + result.Units[1].Managed*30) / 40
	assert.InDelta(t, expected, result.PortfolioManaged, 1e-9)
}

func TestCalculate_Idempotent(t *testing.T) {
	calc := newTestCalculator()
	units := []UnitRisk{
		{Code: "BD", Baseline: 77, Volume: 12},
		{Code: "VN", Baseline: 31, Volume: 9},
	}
	in := buildInput(t, units, 0.66)

	first := calc.Calculate(in)
	second := calc.Calculate(in)
	assert.Equal(t, first, second)
}
