package portfolio

import (
	"github.com/aristath/chain-sentry/pkg/formulas"
)

// Aggregator combines per-unit scores and volumes into a baseline portfolio
// risk and a risk concentration factor.
type Aggregator struct{}

// NewAggregator creates a new portfolio aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes the portfolio summary for a selection.
//
// BaselineRisk is the volume-weighted mean of unit scores (0 when total
// volume is 0). Concentration is the volume-weighted sum of squared scores
// divided by the squared baseline, floored at 1: K = 1 means risk is spread
// uniformly, larger K means a few members carry most of it. Division by
// zero is guarded: a zero or negative baseline always yields K = 1.
func (a *Aggregator) Aggregate(selection []SelectedUnit) Summary {
	if len(selection) == 0 {
		return Summary{Concentration: 1}
	}

	scores := make([]float64, len(selection))
	volumes := make([]float64, len(selection))
	var totalVolume float64
	for i, su := range selection {
		scores[i] = su.Score
		volumes[i] = su.Volume
		totalVolume += su.Volume
	}

	if totalVolume <= 0 {
		return Summary{Concentration: 1}
	}

	baseline := formulas.WeightedMean(scores, volumes)

	concentration := 1.0
	if baseline > 0 {
		var weightedSquares float64
		for i := range selection {
			share := volumes[i] / totalVolume
			weightedSquares += share * scores[i] * scores[i]
		}
		k := weightedSquares / (baseline * baseline)
		if k > 1 {
			concentration = k
		}
	}

	return Summary{
		BaselineRisk:  baseline,
		TotalVolume:   totalVolume,
		Concentration: concentration,
	}
}
