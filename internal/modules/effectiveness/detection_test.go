package effectiveness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
)

func TestDetection_ZeroCoverage(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, 0.0, a.Detection(coverage.ToolVector{}, coverage.ToolVector{}))
}

func TestDetection_SingleCategory(t *testing.T) {
	// One category, one tool, weight 1: detection is simply
	// coverage * avg(base, user) = 0.5 * (0.6+0.4)/2 = 0.25.
	a := NewAggregatorWithCategories([]Category{
		{Name: "only", Tools: []int{0}, BaseEffectiveness: 0.6, Weight: 1.0},
	})

	var cov, eff coverage.ToolVector
	cov[0] = 50
	eff[0] = 40

	assert.InDelta(t, 0.25, a.Detection(cov, eff), 1e-9)
}

func TestDetection_ComplementOfProductWithinCategory(t *testing.T) {
	// Two tools in one category with identical 0.25 channel strength:
	// 1 - (1-0.25)^2 = 0.4375, less than the 0.5 a plain sum would give.
	a := NewAggregatorWithCategories([]Category{
		{Name: "audits", Tools: []int{0, 1}, BaseEffectiveness: 0.6, Weight: 1.0},
	})

	var cov, eff coverage.ToolVector
	cov[0], cov[1] = 50, 50
	eff[0], eff[1] = 40, 40

	assert.InDelta(t, 0.4375, a.Detection(cov, eff), 1e-9)
}

func TestDetection_CategoryWeightDiscounts(t *testing.T) {
	full := NewAggregatorWithCategories([]Category{
		{Name: "a", Tools: []int{0}, BaseEffectiveness: 0.6, Weight: 1.0},
	})
	discounted := NewAggregatorWithCategories([]Category{
		{Name: "a", Tools: []int{0}, BaseEffectiveness: 0.6, Weight: 0.5},
	})

	var cov, eff coverage.ToolVector
	cov[0] = 80
	eff[0] = 60

	assert.Greater(t, full.Detection(cov, eff), discounted.Detection(cov, eff))
}

func TestDetection_Ceiling(t *testing.T) {
	a := NewAggregator()

	cov := coverage.ToolVector{100, 100, 100, 100, 100, 100}
	eff := coverage.ToolVector{100, 100, 100, 100, 100, 100}

	assert.Equal(t, DetectionCeiling, a.Detection(cov, eff))
}

func TestDetection_MonotoneInCoverage(t *testing.T) {
	a := NewAggregator()
	eff := coverage.ToolVector{50, 50, 50, 50, 50, 50}

	prev := 0.0
	for c := 0.0; c <= 100; c += 5 {
		cov := coverage.ToolVector{c, c, c, c, c, c}
		cur := a.Detection(cov, eff)
		assert.GreaterOrEqual(t, cur+1e-12, prev)
		prev = cur
	}
}

func TestResponse_WeightedAverage(t *testing.T) {
	a := NewAggregator()

	alloc := ResponseVector{30, 70, 0, 0, 0, 0}
	eff := ResponseVector{80, 40, 0, 0, 0, 0}

	// 0.3*0.8 + 0.7*0.4 = 0.52
	assert.InDelta(t, 0.52, a.Response(alloc, eff), 1e-9)
}

func TestResponse_ZeroAllocation(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, 0.0, a.Response(ResponseVector{}, ResponseVector{80, 80, 80, 80, 80, 80}))
}

func TestResponse_NoDiminishingReturns(t *testing.T) {
	// Doubling every allocation leaves the weighted average unchanged;
	// response methods do not overlap the way detection channels do.
	a := NewAggregator()

	alloc := ResponseVector{10, 20, 30, 0, 0, 0}
	doubled := ResponseVector{20, 40, 60, 0, 0, 0}
	eff := ResponseVector{50, 60, 70, 80, 90, 100}

	assert.InDelta(t, a.Response(alloc, eff), a.Response(doubled, eff), 1e-9)
}
