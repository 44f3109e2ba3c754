package optimizer

import (
	"github.com/aristath/chain-sentry/internal/modules/coverage"
	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/managedrisk"

	"github.com/aristath/chain-sentry/internal/modules/costs"
)

// ChannelLink declares the fixed linkage between a detection tool slot and
// a response slot: the response mirrors the tool's allocation. Declared
// once here instead of re-deriving a magic index at call sites.
type ChannelLink struct {
	Tool     int
	Response int
}

// VoiceLink is the production linkage: worker-voice response follow-up
// mirrors worker-voice channel coverage.
var VoiceLink = ChannelLink{
	Tool:     coverage.ToolWorkerVoice,
	Response: effectiveness.ResponseWorkerVoice,
}

// Candidate is one point in allocation space.
type Candidate struct {
	Tools     coverage.ToolVector          `json:"tools"`
	Responses effectiveness.ResponseVector `json:"responses"`
}

// normalize clamps every slot to [0, 100] and enforces the channel link.
func (c Candidate) normalize(link ChannelLink) Candidate {
	for i := range c.Tools {
		c.Tools[i] = clampPct(c.Tools[i])
	}
	for i := range c.Responses {
		c.Responses[i] = clampPct(c.Responses[i])
	}
	c.Responses[link.Response] = c.Tools[link.Tool]
	return c
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Strategy names a budget-repair bias used by one restart attempt.
type Strategy string

const (
	// StrategyBalanced scales all slots proportionally toward budget.
	StrategyBalanced Strategy = "balanced"
	// StrategyVoicePriority shields the worker-voice channel: other
	// slots absorb most of any budget correction.
	StrategyVoicePriority Strategy = "voice-priority"
	// StrategyEfficiencyFocused corrects low-weight detection channels
	// first, preserving the channels that detect best per unit spent.
	StrategyEfficiencyFocused Strategy = "efficiency-focused"
	// StrategyPreservePriorityChannel pins the linked channel to its
	// incumbent allocation and repairs around it.
	StrategyPreservePriorityChannel Strategy = "preserve-priority-channel"
)

// restartStrategies is the order restarts cycle through.
var restartStrategies = []Strategy{
	StrategyBalanced,
	StrategyVoicePriority,
	StrategyEfficiencyFocused,
	StrategyPreservePriorityChannel,
	StrategyBalanced,
}

// Status classifies an optimization outcome.
type Status string

const (
	// StatusOptimized means a new, strictly better allocation was found.
	StatusOptimized Status = "optimized"
	// StatusAlreadyOptimized means inputs are unchanged since the last
	// run; the cached result was returned without searching.
	StatusAlreadyOptimized Status = "already_optimized"
	// StatusNoImprovement means no valid allocation improved on the
	// current one within all restart attempts; the original allocation is
	// returned unchanged. An expected terminal outcome, not a fault.
	StatusNoImprovement Status = "no_improvement"
	// StatusKeptPrevious means a re-optimization succeeded but did not
	// strictly dominate the previously cached result, so the previous
	// result was kept.
	StatusKeptPrevious Status = "kept_previous"
)

// ProgressFunc receives search progress: phase name, current iteration,
// and total iterations for the phase. Reporting only; it never affects
// results.
type ProgressFunc func(phase string, iteration, total int)

// Input carries the full optimizer state for one call.
type Input struct {
	Units                 []managedrisk.UnitRisk
	BaselineRisk          float64 // portfolio baseline risk
	Focus                 float64
	Current               Candidate // incumbent allocation
	ToolEffectiveness     coverage.ToolVector
	ResponseEffectiveness effectiveness.ResponseVector
	Assumptions           costs.Assumptions
	TargetBudget          float64
	Tolerance             float64 // absolute budget window half-width
}

// Result is the optimizer's structured outcome.
type Result struct {
	RunID       string    `json:"run_id"`
	Status      Status    `json:"status"`
	Allocation  Candidate `json:"allocation"`
	Cost        float64   `json:"cost"`
	ManagedRisk float64   `json:"managed_risk"`
	CurrentRisk float64   `json:"current_risk"` // incumbent's managed risk
	Improvement float64   `json:"improvement"`  // risk points gained vs incumbent
	Strategy    Strategy  `json:"strategy,omitempty"`
	Restarts    int       `json:"restarts"`
	StateHash   string    `json:"state_hash"`
}

// Config holds the search parameters.
type Config struct {
	MaxRestarts         int
	MinImprovement      float64 // risk points; smaller gains count as noise
	AnnealingIterations int
	InitialTemperature  float64
	CoolingRate         float64
	PopulationSize      int
	Generations         int
	ElitismCount        int
	TournamentSize      int
	MutationRate        float64
	MutationSpan        float64 // max absolute slot perturbation
	Seed                int64
	Progress            ProgressFunc
	Link                ChannelLink
}

// DefaultConfig returns the production search parameters.
func DefaultConfig() Config {
	return Config{
		MaxRestarts:         5,
		MinImprovement:      0.1,
		AnnealingIterations: 250,
		InitialTemperature:  8.0,
		CoolingRate:         0.96,
		PopulationSize:      32,
		Generations:         24,
		ElitismCount:        4,
		TournamentSize:      3,
		MutationRate:        0.15,
		MutationSpan:        10.0,
		Seed:                1,
		Link:                VoiceLink,
	}
}
