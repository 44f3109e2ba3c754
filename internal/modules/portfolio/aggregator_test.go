package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_TwoUnits(t *testing.T) {
	// Volumes [10, 20] with scores [80, 20]:
	// baseline = (10*80 + 20*20) / 30 = 40
	// K = ((10/30)*6400 + (20/30)*400) / 1600 = 2400/1600 = 1.5
	agg := NewAggregator()
	summary := agg.Aggregate([]SelectedUnit{
		{Code: "BD", Volume: 10, Score: 80},
		{Code: "VN", Volume: 20, Score: 20},
	})

	assert.InDelta(t, 40.0, summary.BaselineRisk, 1e-9)
	assert.InDelta(t, 30.0, summary.TotalVolume, 1e-9)
	assert.InDelta(t, 1.5, summary.Concentration, 1e-9)
}

func TestAggregate_BaselineIsConvexCombination(t *testing.T) {
	agg := NewAggregator()
	selection := []SelectedUnit{
		{Code: "A", Volume: 3, Score: 15},
		{Code: "B", Volume: 7, Score: 62},
		{Code: "C", Volume: 11, Score: 88},
	}
	summary := agg.Aggregate(selection)

	assert.GreaterOrEqual(t, summary.BaselineRisk, 15.0)
	assert.LessOrEqual(t, summary.BaselineRisk, 88.0)
}

func TestAggregate_UniformScoresGiveUnitConcentration(t *testing.T) {
	agg := NewAggregator()
	summary := agg.Aggregate([]SelectedUnit{
		{Code: "A", Volume: 5, Score: 55},
		{Code: "B", Volume: 25, Score: 55},
		{Code: "C", Volume: 1, Score: 55},
	})

	assert.InDelta(t, 1.0, summary.Concentration, 1e-9)
}

func TestAggregate_ConcentrationNeverBelowOne(t *testing.T) {
	agg := NewAggregator()
	for _, selection := range [][]SelectedUnit{
		{{Code: "A", Volume: 1, Score: 10}},
		{{Code: "A", Volume: 1, Score: 90}, {Code: "B", Volume: 9, Score: 10}},
		{{Code: "A", Volume: 4, Score: 0}, {Code: "B", Volume: 4, Score: 0}},
	} {
		assert.GreaterOrEqual(t, agg.Aggregate(selection).Concentration, 1.0)
	}
}

func TestAggregate_ZeroVolume(t *testing.T) {
	agg := NewAggregator()
	summary := agg.Aggregate([]SelectedUnit{
		{Code: "A", Volume: 0, Score: 50},
	})

	assert.Equal(t, 0.0, summary.BaselineRisk)
	assert.Equal(t, 1.0, summary.Concentration)
}

func TestAggregate_Empty(t *testing.T) {
	agg := NewAggregator()
	summary := agg.Aggregate(nil)

	assert.Equal(t, 0.0, summary.BaselineRisk)
	assert.Equal(t, 1.0, summary.Concentration)
}
