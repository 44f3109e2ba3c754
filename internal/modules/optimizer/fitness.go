package optimizer

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/costs"
	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/managedrisk"
)

// budgetPenalty dominates any achievable risk value, so budget-invalid
// candidates always lose to valid ones during search.
const budgetPenalty = 1000.0

// Evaluation is one candidate's deterministic fitness breakdown.
type Evaluation struct {
	Risk        float64 // portfolio managed risk under this allocation
	Cost        float64
	ValidBudget bool
}

// Evaluator is the deterministic fitness function: managed portfolio risk
// under a candidate allocation, plus the cost model. It is pure with
// respect to the candidate; the stochastic search drivers live elsewhere
// and only call into it.
type Evaluator struct {
	in          Input
	distributor *coverage.Distributor
	calculator  *managedrisk.Calculator
	costModel   *costs.Model
	exposures   []coverage.UnitExposure
}

// NewEvaluator builds an evaluator for one optimization call.
func NewEvaluator(in Input, calc *managedrisk.Calculator, log zerolog.Logger) *Evaluator {
	exposures := make([]coverage.UnitExposure, len(in.Units))
	for i, u := range in.Units {
		exposures[i] = coverage.UnitExposure{Code: u.Code, Risk: u.Baseline, Volume: u.Volume}
	}
	return &Evaluator{
		in:          in,
		distributor: coverage.NewDistributor(log),
		calculator:  calc,
		costModel:   costs.NewModel(),
		exposures:   exposures,
	}
}

// Evaluate runs the full pipeline for a candidate: distribute coverage,
// compute managed risk, price the allocation, check the budget window.
func (e *Evaluator) Evaluate(c Candidate) Evaluation {
	dist := e.distributor.Distribute(e.exposures, e.in.BaselineRisk, e.in.Focus, c.Tools)

	result := e.calculator.Calculate(managedrisk.Input{
		Units:                 e.in.Units,
		Coverage:              dist,
		ToolEffectiveness:     e.in.ToolEffectiveness,
		ResponseAllocation:    c.Responses,
		ResponseEffectiveness: e.in.ResponseEffectiveness,
		Focus:                 e.in.Focus,
		BaselineRisk:          e.in.BaselineRisk,
	})

	cost := e.costModel.Total(c.Tools, c.Responses, e.in.Assumptions)

	return Evaluation{
		Risk:        result.PortfolioManaged,
		Cost:        cost,
		ValidBudget: math.Abs(cost-e.in.TargetBudget) <= e.in.Tolerance,
	}
}

// fitness collapses an evaluation into a single minimized scalar. Invalid
// candidates carry the flat penalty plus a term proportional to how far
// outside the window they sit, so repair pressure points back toward
// budget even before validity is reached.
func (e *Evaluator) fitness(ev Evaluation) float64 {
	if ev.ValidBudget {
		return ev.Risk
	}
	over := math.Abs(ev.Cost-e.in.TargetBudget) - e.in.Tolerance
	scale := e.in.TargetBudget
	if scale <= 0 {
		scale = 1
	}
	return ev.Risk + budgetPenalty + budgetPenalty*(over/scale)
}
