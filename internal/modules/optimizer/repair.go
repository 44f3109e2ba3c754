package optimizer

import (
	"math"

	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
)

// repairIterations bounds the budget-repair loop; repair converges
// geometrically, so a handful of passes is plenty.
const repairIterations = 24

// slotRef addresses one adjustable allocation slot. The linked response
// slot is never adjusted directly; it mirrors its tool.
type slotRef struct {
	tool bool
	idx  int
}

// adjustableSlots enumerates every slot the search may move, honoring the
// channel link.
func adjustableSlots(link ChannelLink) []slotRef {
	slots := make([]slotRef, 0, coverage.ToolCount+effectiveness.ResponseCount-1)
	for i := 0; i < coverage.ToolCount; i++ {
		slots = append(slots, slotRef{tool: true, idx: i})
	}
	for i := 0; i < effectiveness.ResponseCount; i++ {
		if i == link.Response {
			continue
		}
		slots = append(slots, slotRef{tool: false, idx: i})
	}
	return slots
}

func (c Candidate) get(s slotRef) float64 {
	if s.tool {
		return c.Tools[s.idx]
	}
	return c.Responses[s.idx]
}

func (c *Candidate) set(s slotRef, v float64) {
	if s.tool {
		c.Tools[s.idx] = v
	} else {
		c.Responses[s.idx] = v
	}
}

// efficiencyRepairWeights makes low-yield detection channels absorb
// corrections first: desk review and self-report give ground before the
// strong channels do.
var efficiencyRepairWeights = [6]float64{0.4, 0.75, 0.4, 1.0, 1.3, 1.5}

// repairWeight returns how strongly a slot participates in budget
// correction under a strategy. Weight 0 pins the slot.
func repairWeight(s slotRef, strategy Strategy, link ChannelLink) float64 {
	switch strategy {
	case StrategyVoicePriority:
		if s.tool && s.idx == link.Tool {
			return 0.25
		}
		return 1
	case StrategyEfficiencyFocused:
		if s.tool {
			return efficiencyRepairWeights[s.idx]
		}
		return 1
	case StrategyPreservePriorityChannel:
		if s.tool && s.idx == link.Tool {
			return 0
		}
		return 1
	default:
		return 1
	}
}

// repairBudget nudges a candidate into the budget window by scaling its
// slots toward the target, biased by the restart strategy. The incumbent
// supplies pinned values for the preserve strategy. Repair is
// deterministic; if the window cannot be reached (for example every
// movable slot is saturated) the closest attempt is returned and the
// candidate simply stays budget-invalid.
func (e *Evaluator) repairBudget(c Candidate, incumbent Candidate, strategy Strategy, link ChannelLink) Candidate {
	if strategy == StrategyPreservePriorityChannel {
		c.Tools[link.Tool] = incumbent.Tools[link.Tool]
	}
	c = c.normalize(link)

	for iter := 0; iter < repairIterations; iter++ {
		ev := e.Evaluate(c)
		if ev.ValidBudget {
			return c
		}

		if ev.Cost <= 0 {
			// Nothing allocated yet; seed movable slots so scaling has
			// something to work with.
			for _, s := range adjustableSlots(link) {
				if w := repairWeight(s, strategy, link); w > 0 {
					c.set(s, math.Max(c.get(s), 5*w))
				}
			}
			c = c.normalize(link)
			continue
		}

		factor := e.in.TargetBudget / ev.Cost
		for _, s := range adjustableSlots(link) {
			w := repairWeight(s, strategy, link)
			if w <= 0 {
				continue
			}
			c.set(s, c.get(s)*(1+(factor-1)*w))
		}
		c = c.normalize(link)
	}
	return c
}
