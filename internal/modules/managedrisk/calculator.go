// Package managedrisk combines detection, response, and focus effects into
// per-unit managed risk, with a rank-preservation guarantee against the
// baseline ordering.
package managedrisk

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/focus"
	"github.com/aristath/chain-sentry/pkg/formulas"
)

// UnitRisk is a portfolio member as seen by the calculator.
type UnitRisk struct {
	Code     string  `json:"code"`
	Baseline float64 `json:"baseline"` // baseline risk score, 0-100
	Volume   float64 `json:"volume"`
}

// Input carries everything the calculator needs. Coverage is aligned with
// Units by index (the distributor's output for the same selection).
type Input struct {
	Units                 []UnitRisk                   `json:"units"`
	Coverage              []coverage.UnitCoverage      `json:"coverage"`
	ToolEffectiveness     coverage.ToolVector          `json:"tool_effectiveness"`     // user-supplied, percent
	ResponseAllocation    effectiveness.ResponseVector `json:"response_allocation"`    // percent per method
	ResponseEffectiveness effectiveness.ResponseVector `json:"response_effectiveness"` // percent per method
	Focus                 float64                      `json:"focus"`
	BaselineRisk          float64                      `json:"baseline_risk"` // portfolio baseline risk
}

// UnitResult is the managed-risk outcome for one unit.
type UnitResult struct {
	Code         string  `json:"code"`
	Baseline     float64 `json:"baseline"`
	Managed      float64 `json:"managed"`
	Reduction    float64 `json:"reduction"` // applied reduction factor, 0-1
	RankAdjusted bool    `json:"rank_adjusted"`
}

// Result is the calculator's portfolio-level output.
type Result struct {
	Units            []UnitResult `json:"units"`
	PortfolioManaged float64      `json:"portfolio_managed"`
	PortfolioBase    float64      `json:"portfolio_base"`
}

// Calculator computes managed risk.
type Calculator struct {
	eff *effectiveness.Aggregator
	log zerolog.Logger
}

// NewCalculator creates a managed-risk calculator.
func NewCalculator(eff *effectiveness.Aggregator, log zerolog.Logger) *Calculator {
	return &Calculator{
		eff: eff,
		log: log.With().Str("module", "managedrisk").Logger(),
	}
}

// Calculate computes managed risk for every unit and the volume-weighted
// portfolio managed risk.
//
// Per unit: detection effectiveness (from that unit's distributed
// coverage) times response effectiveness (portfolio-level) times the
// country focus multiplier gives a raw reduction factor. The reduction is
// clamped against the progressive cap, the result is floored at
// FloorRatio of baseline, and a final descending-baseline pass forces any
// rank inversion down to the next-higher unit's managed risk minus
// RankEpsilon. The local multipliers are individually bounded but do not
// compose into a globally monotone mapping, hence the explicit second
// stage.
func (c *Calculator) Calculate(in Input) Result {
	respEff := c.eff.Response(in.ResponseAllocation, in.ResponseEffectiveness)
	f := formulas.Clamp(in.Focus, 0, 1)

	results := make([]UnitResult, len(in.Units))
	for i, u := range in.Units {
		results[i] = UnitResult{Code: u.Code, Baseline: u.Baseline, Managed: u.Baseline}
		if u.Baseline <= 0 {
			continue
		}

		var cov coverage.ToolVector
		if i < len(in.Coverage) {
			cov = in.Coverage[i].Tools
		}
		detEff := c.eff.Detection(cov, in.ToolEffectiveness)
		focusMult := c.focusMultiplier(u.Baseline, in.BaselineRisk, f)

		raw := detEff * respEff * focusMult
		reduction := math.Min(raw, progressiveCap(u.Baseline))

		managed := u.Baseline * (1 - reduction)
		floor := u.Baseline * FloorRatio
		if managed < floor {
			managed = floor
			reduction = 1 - FloorRatio
		}

		results[i].Managed = managed
		results[i].Reduction = reduction
	}

	c.preserveRank(results)

	return Result{
		Units:            results,
		PortfolioManaged: weightedManaged(in.Units, results),
		PortfolioBase:    in.BaselineRisk,
	}
}

// focusMultiplier returns the country focus multiplier for one unit.
//
// The base is a blend between neutrality and the biased risk ratio,
// damped by the concentration-sensitivity constant. Above the focus gate,
// high-risk units receive an extra bonus on top of the blend.
func (c *Calculator) focusMultiplier(unitRisk, baselineRisk, f float64) float64 {
	if baselineRisk <= 0 {
		return 1
	}
	biased := focus.BiasedRatio(unitRisk/baselineRisk, f)
	blend := (1 - f*ConcentrationGamma) + f*ConcentrationGamma*biased

	if f > HighRiskFocusGate && unitRisk >= HighRiskScoreThreshold {
		return blend * BonusMultiplier
	}
	return blend
}

// progressiveCap returns the maximum reduction allowed for a unit at the
// given baseline risk: CapMaxReduction near zero, shrinking linearly to
// CapMinReduction at the top of the scale.
func progressiveCap(baseline float64) float64 {
	t := formulas.Clamp(baseline/100, 0, 1)
	return CapMaxReduction - (CapMaxReduction-CapMinReduction)*t
}

// preserveRank walks units in descending baseline order and forces any
// unit whose managed risk reaches or exceeds its higher-baseline
// predecessor down to predecessor minus RankEpsilon (never below its own
// floor). A single descending walk suffices: every forced value is
// strictly below its predecessor's final value, so the corrected sequence
// is non-increasing transitively.
func (c *Calculator) preserveRank(results []UnitResult) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].Baseline > results[order[b]].Baseline
	})

	for k := 1; k < len(order); k++ {
		prev := &results[order[k-1]]
		cur := &results[order[k]]
		if cur.Baseline <= 0 {
			continue
		}
		if cur.Managed >= prev.Managed {
			floor := cur.Baseline * FloorRatio
			cur.Managed = math.Max(floor, prev.Managed-RankEpsilon)
			cur.RankAdjusted = true
			c.log.Debug().
				Str("code", cur.Code).
				Float64("managed", formulas.Round2(cur.Managed)).
				Msg("Rank preservation adjusted managed risk")
		}
	}
}

// weightedManaged recomputes the volume-weighted portfolio managed risk
// after the rank correction.
func weightedManaged(units []UnitRisk, results []UnitResult) float64 {
	values := make([]float64, len(results))
	volumes := make([]float64, len(results))
	for i := range results {
		values[i] = results[i].Managed
		volumes[i] = units[i].Volume
	}
	return formulas.WeightedMean(values, volumes)
}
