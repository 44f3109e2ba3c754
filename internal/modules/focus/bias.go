// Package focus implements the focus bias function: a bounded, monotone
// mapping from the portfolio focus control and a unit's risk ratio to a
// capacity multiplier. Both the coverage distributor and the managed-risk
// calculator build on it.
package focus

import (
	"math"

	"github.com/aristath/chain-sentry/pkg/formulas"
)

// Bias function bounds. All of these are configuration constants so call
// sites never bake in magic literals.
const (
	// ExponentMin / ExponentMax bound the focus exponent. The exponent
	// rises faster below ExponentKnee than above it, which limits how
	// aggressive high-focus settings can get and reduces the chance of
	// rank inversion downstream.
	ExponentMin  = 1.0
	ExponentMax  = 2.0
	ExponentKnee = 0.5

	// Risk ratios are clamped to [MinRatio, MaxRatio] before biasing.
	MinRatio = 0.08
	MaxRatio = 2.5

	// Below LowRatioThreshold the biased value is compressed toward the
	// threshold's own value, guaranteeing low-risk units a residual share
	// of capacity.
	LowRatioThreshold    = 0.8
	LowRatioCompression  = 0.85

	// Above ExtremeValueThreshold, and once focus passes
	// ExtremeFocusThreshold, growth of the biased value is halved so a
	// handful of high-risk units cannot absorb unbounded capacity as
	// focus approaches 1.
	ExtremeValueThreshold = 1.5
	ExtremeFocusThreshold = 0.7
	ExtremeCompression    = 0.5
)

// Exponent maps focus in [0,1] to the bias exponent in
// [ExponentMin, ExponentMax]. Piecewise linear with a knee at
// ExponentKnee: steeper below, flatter above.
func Exponent(focus float64) float64 {
	f := formulas.Clamp(focus, 0, 1)

	// Slopes chosen so the two segments meet at the knee and the curve
	// tops out exactly at ExponentMax.
	const slopeBelow = 1.6 // 1.0 -> 1.8 over [0, 0.5]
	const slopeAbove = 0.4 // 1.8 -> 2.0 over [0.5, 1]

	if f <= ExponentKnee {
		return ExponentMin + f*slopeBelow
	}
	return ExponentMin + ExponentKnee*slopeBelow + (f-ExponentKnee)*slopeAbove
}

// BiasedRatio maps a unit's risk ratio (unit risk / baseline risk) and the
// focus control to a bounded multiplier.
//
// The clamped ratio is raised to the focus exponent, then two compression
// passes apply:
//
//   - ratios below LowRatioThreshold are pulled toward the threshold's
//     biased value, so low-risk units are never starved;
//   - once focus exceeds ExtremeFocusThreshold, any growth beyond the
//     value the unit had at that focus level (or ExtremeValueThreshold,
//     whichever is higher) is halved.
//
// The extreme pass is anchored at the focus gate rather than switched on
// abruptly, which keeps the function continuous and non-decreasing in both
// arguments. Pure function, no side effects.
func BiasedRatio(riskRatio, focus float64) float64 {
	f := formulas.Clamp(focus, 0, 1)
	r := formulas.Clamp(riskRatio, MinRatio, MaxRatio)

	biased := raise(r, f)

	if f > ExtremeFocusThreshold && biased > ExtremeValueThreshold {
		anchor := math.Max(ExtremeValueThreshold, raise(r, ExtremeFocusThreshold))
		if biased > anchor {
			biased = anchor + (biased-anchor)*ExtremeCompression
		}
	}

	return biased
}

// raise applies the exponent and the low-ratio compression for a clamped
// ratio at the given focus.
func raise(r, f float64) float64 {
	exp := Exponent(f)
	b := math.Pow(r, exp)
	if r < LowRatioThreshold {
		pivot := math.Pow(LowRatioThreshold, exp)
		b = pivot - (pivot-b)*LowRatioCompression
	}
	return b
}
