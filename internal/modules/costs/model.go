// Package costs prices a detection and response program: fixed annual
// tool costs, per-unit variable costs, and internal hours at an hourly
// rate. Pure functions, no hidden state.
package costs

import (
	"math"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
)

// ToolCost holds the cost assumptions for one detection tool.
type ToolCost struct {
	FixedAnnual  float64 `json:"fixed_annual"`   // program fixed cost at full coverage
	PerUnit      float64 `json:"per_unit"`       // variable cost per covered unit
	HoursPerUnit float64 `json:"hours_per_unit"` // internal hours per covered unit
}

// Assumptions is the full cost configuration. All values are
// non-negative.
type Assumptions struct {
	Tools         [coverage.ToolCount]ToolCost         `json:"tools"`
	ResponseHours [effectiveness.ResponseCount]float64 `json:"response_hours"` // internal hours per unit per method
	HourlyRate    float64                              `json:"hourly_rate"`
	UnitCount     int                                  `json:"unit_count"`
}

// DefaultAssumptions returns the stock cost configuration used when the
// caller has not customized pricing.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Tools: [coverage.ToolCount]ToolCost{
			{FixedAnnual: 25000, PerUnit: 1200, HoursPerUnit: 12}, // worker voice
			{FixedAnnual: 15000, PerUnit: 900, HoursPerUnit: 8},   // periodic
			{FixedAnnual: 8000, PerUnit: 4500, HoursPerUnit: 16},  // unannounced audit
			{FixedAnnual: 6000, PerUnit: 3000, HoursPerUnit: 10},  // announced audit
			{FixedAnnual: 3000, PerUnit: 250, HoursPerUnit: 4},    // self report
			{FixedAnnual: 2000, PerUnit: 150, HoursPerUnit: 6},    // desk review
		},
		ResponseHours: [effectiveness.ResponseCount]float64{20, 16, 24, 18, 10, 8},
		HourlyRate:    85,
		UnitCount:     25,
	}
}

// Model converts allocations into a total annual budget figure.
type Model struct{}

// NewModel creates a cost model.
func NewModel() *Model {
	return &Model{}
}

// Total prices a tool/response allocation.
//
// Per tool: fixed cost scaled by coverage ratio, plus per-unit cost and
// internal hours for the covered headcount, rounded up because a
// partially covered unit still needs the full visit. Per response method:
// internal hours for the allocated headcount. Degenerate input (zero
// units, empty allocations) prices to 0.
func (m *Model) Total(tools coverage.ToolVector, responses effectiveness.ResponseVector, a Assumptions) float64 {
	if a.UnitCount <= 0 {
		return 0
	}
	units := float64(a.UnitCount)

	var total float64
	for t := 0; t < coverage.ToolCount; t++ {
		ratio := tools[t] / 100
		if ratio <= 0 {
			continue
		}
		covered := math.Ceil(units * ratio)
		tc := a.Tools[t]
		total += tc.FixedAnnual * ratio
		total += tc.PerUnit * covered
		total += covered * tc.HoursPerUnit * a.HourlyRate
	}

	for r := 0; r < effectiveness.ResponseCount; r++ {
		ratio := responses[r] / 100
		if ratio <= 0 {
			continue
		}
		allocated := math.Ceil(units * ratio)
		total += allocated * a.ResponseHours[r] * a.HourlyRate
	}

	return total
}
