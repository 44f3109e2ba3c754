package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_WeightedAverage(t *testing.T) {
	// Indicators [50, 40, 0, 60, 20] with weights [30, 30, 10, 20, 10]:
	// index 2 is unknown and must be excluded, so the score is
	// (50*30 + 40*30 + 60*20 + 20*10) / (30+30+20+10) = 4100/90.
	scorer := NewScorer()
	unit := Unit{
		Code:       "BD",
		Indicators: [IndicatorCount]float64{50, 40, 0, 60, 20},
	}
	weights := WeightVector{30, 30, 10, 20, 10}

	score := scorer.Score(unit, weights)
	assert.InDelta(t, 4100.0/90.0, score, 1e-9)
}

func TestScore_AllZeroIndicators(t *testing.T) {
	scorer := NewScorer()
	unit := Unit{Code: "XX"}
	weights := WeightVector{10, 10, 10, 10, 10}

	assert.Equal(t, 0.0, scorer.Score(unit, weights))
}

func TestScore_UniformIndicators(t *testing.T) {
	// When every indicator has the same value v > 0, the score equals v
	// regardless of how the weights are distributed.
	scorer := NewScorer()
	unit := Unit{
		Code:       "VN",
		Indicators: [IndicatorCount]float64{42, 42, 42, 42, 42},
	}

	for _, weights := range []WeightVector{
		{1, 1, 1, 1, 1},
		{50, 0.5, 10, 3, 27},
		{0.1, 0.1, 0.1, 49, 0.1},
	} {
		assert.InDelta(t, 42.0, scorer.Score(unit, weights), 1e-9)
	}
}

func TestScore_ZeroWeightsOnParticipatingIndicators(t *testing.T) {
	scorer := NewScorer()
	unit := Unit{
		Code:       "KH",
		Indicators: [IndicatorCount]float64{80, 0, 0, 0, 0},
	}
	// The only participating indicator carries zero weight.
	weights := WeightVector{0, 10, 10, 10, 10}

	assert.Equal(t, 0.0, scorer.Score(unit, weights))
}

func TestScore_Idempotent(t *testing.T) {
	scorer := NewScorer()
	unit := Unit{
		Code:       "IN",
		Indicators: [IndicatorCount]float64{33.3, 71.2, 14.9, 0, 88},
	}
	weights := WeightVector{12, 8, 30, 5, 45}

	first := scorer.Score(unit, weights)
	second := scorer.Score(unit, weights)
	assert.Equal(t, first, second)
}

func TestWeightVector_Validate(t *testing.T) {
	valid := WeightVector{0, 10, 25, 50, 30}
	require.NoError(t, valid.Validate())

	invalid := WeightVector{-1, 10, 25, 51, 30}
	err := invalid.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Equal(t, "governance", errs[0].Field)
	assert.Equal(t, "conflict", errs[1].Field)
}

func TestUnit_Validate(t *testing.T) {
	err := Unit{Code: "", Indicators: [IndicatorCount]float64{0, 0, 0, 0, 101}}.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
}
