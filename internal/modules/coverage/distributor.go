// Package coverage spreads a baseline detection-tool mix across portfolio
// units according to focus bias, under a hard resource-conservation
// ceiling.
package coverage

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/focus"
	"github.com/aristath/chain-sentry/pkg/formulas"
)

// ToolVector holds one coverage percentage (0-100) per detection tool.
type ToolVector [ToolCount]float64

// UnitExposure is the distributor's per-unit input: the unit's baseline
// risk score and its portfolio volume.
type UnitExposure struct {
	Code   string  `json:"code"`
	Risk   float64 `json:"risk"`
	Volume float64 `json:"volume"`
}

// UnitCoverage is the per-unit output: the adjusted coverage each tool
// gives this unit.
type UnitCoverage struct {
	Code  string     `json:"code"`
	Tools ToolVector `json:"tools"`
}

// Distributor redistributes a baseline coverage mix toward higher-risk
// units.
type Distributor struct {
	log zerolog.Logger
}

// NewDistributor creates a new coverage distributor.
func NewDistributor(log zerolog.Logger) *Distributor {
	return &Distributor{
		log: log.With().Str("module", "coverage").Logger(),
	}
}

// Distribute computes per-unit tool coverage for a baseline mix.
//
// Each unit's coverage is the baseline mix scaled by a focus adjustment,
// (1-focus) + focus*biasedRatio, and a bounded high-risk boost that phases
// in smoothly once both focus and unit risk pass their thresholds. A
// per-tool conservation pass then guarantees total usage (coverage times
// volume, summed over units) never exceeds the original total by more than
// ExpansionCap, no matter how focus redistributed it.
//
// A zero or negative baseline risk disables redistribution: every unit
// receives the unmodified mix.
func (d *Distributor) Distribute(units []UnitExposure, baselineRisk, focusLevel float64, mix ToolVector) []UnitCoverage {
	if len(units) == 0 {
		return nil
	}

	f := formulas.Clamp(focusLevel, 0, 1)
	result := make([]UnitCoverage, len(units))

	if baselineRisk <= 0 {
		for i, u := range units {
			result[i] = UnitCoverage{Code: u.Code, Tools: mix}
		}
		return result
	}

	for i, u := range units {
		biased := focus.BiasedRatio(u.Risk/baselineRisk, f)
		adjustment := (1 - f) + f*biased
		boost := highRiskBoost(f, u.Risk)

		var tools ToolVector
		for t := 0; t < ToolCount; t++ {
			tools[t] = math.Min(MaxCoveragePct, mix[t]*adjustment*boost)
		}
		result[i] = UnitCoverage{Code: u.Code, Tools: tools}
	}

	d.conserve(units, mix, result)
	return result
}

// highRiskBoost returns a multiplier in [1, 1+MaxHighRiskBoost]. Both
// gates ramp linearly from their threshold to the top of their range so
// the boost has no step edge.
func highRiskBoost(f, risk float64) float64 {
	focusPhase := formulas.Clamp((f-BoostFocusThreshold)/(1-BoostFocusThreshold), 0, 1)
	riskPhase := formulas.Clamp((risk-BoostRiskThreshold)/(100-BoostRiskThreshold), 0, 1)
	return 1 + MaxHighRiskBoost*focusPhase*riskPhase
}

// conserve applies the per-tool resource-conservation factor in place:
// when a tool's adjusted usage exceeds the allowed expansion over its
// original usage, every unit's coverage for that tool is scaled down by
// allowedMax/actualTotal.
func (d *Distributor) conserve(units []UnitExposure, mix ToolVector, result []UnitCoverage) {
	for t := 0; t < ToolCount; t++ {
		var originalTotal, adjustedTotal float64
		for i, u := range units {
			originalTotal += mix[t] * u.Volume
			adjustedTotal += result[i].Tools[t] * u.Volume
		}

		allowedMax := originalTotal * (1 + ExpansionCap)
		if adjustedTotal <= allowedMax || adjustedTotal <= 0 {
			continue
		}

		scale := allowedMax / adjustedTotal
		for i := range result {
			result[i].Tools[t] *= scale
		}

		d.log.Debug().
			Str("tool", ToolNames[t]).
			Float64("scale", formulas.Round3(scale)).
			Msg("Applied resource conservation scaling")
	}
}
