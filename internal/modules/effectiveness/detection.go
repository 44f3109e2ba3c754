// Package effectiveness folds tool coverage and response allocations into
// single detection and response effectiveness scores.
package effectiveness

import (
	"math"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/pkg/formulas"
)

// ResponseVector holds one allocation or effectiveness percentage (0-100)
// per response method.
type ResponseVector [ResponseCount]float64

// Aggregator computes detection and response effectiveness.
type Aggregator struct {
	categories []Category
}

// NewAggregator creates an aggregator with the default category
// configuration.
func NewAggregator() *Aggregator {
	return &Aggregator{categories: DefaultCategories()}
}

// NewAggregatorWithCategories creates an aggregator with a custom category
// configuration, used by tests and alternate deployments.
func NewAggregatorWithCategories(categories []Category) *Aggregator {
	return &Aggregator{categories: categories}
}

// Detection folds per-tool coverage and effectiveness into one detection
// score in [0, DetectionCeiling].
//
// Tools within a category combine as independent detection channels:
// 1 - prod(1 - coverage_i * avgEffectiveness_i), where avgEffectiveness is
// the mean of the category's base constant and the user-supplied
// effectiveness for the tool. Each category result is discounted by its
// weight, then categories combine the same complement-of-product way, so
// additional overlapping channels bring diminishing returns. The final
// score is clamped to DetectionCeiling.
func (a *Aggregator) Detection(cov coverage.ToolVector, userEffectiveness coverage.ToolVector) float64 {
	missAll := 1.0
	for _, cat := range a.categories {
		catMiss := 1.0
		for _, tool := range cat.Tools {
			covRatio := formulas.Clamp(cov[tool], 0, 100) / 100
			userEff := formulas.Clamp(userEffectiveness[tool], 0, 100) / 100
			avgEff := (cat.BaseEffectiveness + userEff) / 2
			catMiss *= 1 - covRatio*avgEff
		}
		catHit := (1 - catMiss) * cat.Weight
		missAll *= 1 - catHit
	}
	return math.Min(DetectionCeiling, 1-missAll)
}

// Response folds response-method allocation and assumed effectiveness into
// a single score in [0, 1].
//
// Responses are independent remediation levers rather than overlapping
// detection channels, so this is a plain allocation-weighted average with
// no diminishing returns. A zero total allocation yields 0.
func (a *Aggregator) Response(allocation ResponseVector, methodEffectiveness ResponseVector) float64 {
	var total float64
	for _, w := range allocation {
		total += w
	}
	if total <= 0 {
		return 0
	}

	var combined float64
	for i := 0; i < ResponseCount; i++ {
		eff := formulas.Clamp(methodEffectiveness[i], 0, 100) / 100
		combined += (allocation[i] / total) * eff
	}
	return combined
}
