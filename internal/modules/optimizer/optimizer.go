// Package optimizer searches allocation space for the lowest managed
// portfolio risk reachable inside a budget window. Each restart runs
// three phases (simulated annealing, a genetic pass, then coordinate
// local search) and is biased by a different repair strategy. Results
// are memoized on a hash of the full input state so unchanged inputs
// never trigger a second search.
package optimizer

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/effectiveness"
	"github.com/aristath/chain-sentry/internal/modules/managedrisk"
	"github.com/aristath/chain-sentry/internal/modules/optimizer/hash"
)

// Optimizer runs budget-constrained allocation searches. Safe for
// concurrent use; the memo cache is guarded internally.
type Optimizer struct {
	cfg Config
	log zerolog.Logger

	mu         sync.Mutex
	cachedKey  string
	cachedRes  Result
	cacheValid bool
}

// New creates an optimizer with the given search configuration.
func New(cfg Config, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		cfg: cfg,
		log: log.With().Str("module", "optimizer").Logger(),
	}
}

// Optimize finds the best allocation for the input, or reports that none
// improves on the incumbent. Outcomes:
//
//   - unchanged inputs return the memoized result without searching
//   - a strictly better valid allocation is returned as optimized
//   - gains below MinImprovement keep the incumbent as no_improvement
//   - after an input change, a new result that does not beat the
//     re-evaluated previous allocation keeps the previous one
func (o *Optimizer) Optimize(in Input) Result {
	key := o.stateKey(in)

	o.mu.Lock()
	if o.cacheValid && o.cachedKey == key {
		res := o.cachedRes
		o.mu.Unlock()
		res.Status = StatusAlreadyOptimized
		o.log.Info().Str("state_hash", key).Msg("optimization state unchanged, returning cached result")
		return res
	}
	prev, hadPrev := o.cachedRes, o.cacheValid
	o.mu.Unlock()

	calc := managedrisk.NewCalculator(effectiveness.NewAggregator(), o.log)
	ev := NewEvaluator(in, calc, o.log)

	incumbent := in.Current.normalize(o.cfg.Link)
	incumbentEval := ev.Evaluate(incumbent)

	o.log.Info().
		Str("state_hash", key).
		Float64("current_risk", incumbentEval.Risk).
		Float64("current_cost", incumbentEval.Cost).
		Float64("target_budget", in.TargetBudget).
		Msg("starting optimization")

	best, bestEval, bestStrategy, restarts := o.search(ev, incumbent)

	res := Result{
		RunID:       uuid.NewString(),
		Restarts:    restarts,
		CurrentRisk: incumbentEval.Risk,
		StateHash:   key,
	}

	improvement := incumbentEval.Risk - bestEval.Risk
	if bestEval.ValidBudget && improvement >= o.cfg.MinImprovement {
		res.Status = StatusOptimized
		res.Allocation = best
		res.Cost = bestEval.Cost
		res.ManagedRisk = bestEval.Risk
		res.Improvement = improvement
		res.Strategy = bestStrategy
	} else {
		res.Status = StatusNoImprovement
		res.Allocation = in.Current
		res.Cost = incumbentEval.Cost
		res.ManagedRisk = incumbentEval.Risk
	}

	// The inputs changed since the last run. Before replacing the cached
	// plan, re-price it under today's inputs; a still-valid previous plan
	// is only displaced by one that strictly dominates it (better on one
	// of risk/cost, no worse on the other).
	if hadPrev && res.Status == StatusOptimized {
		prevEval := ev.Evaluate(prev.Allocation.normalize(o.cfg.Link))
		dominates := (res.ManagedRisk < prevEval.Risk && res.Cost <= prevEval.Cost) ||
			(res.ManagedRisk <= prevEval.Risk && res.Cost < prevEval.Cost)
		if prevEval.ValidBudget && !dominates {
			res.Status = StatusKeptPrevious
			res.Allocation = prev.Allocation
			res.Cost = prevEval.Cost
			res.ManagedRisk = prevEval.Risk
			res.Improvement = incumbentEval.Risk - prevEval.Risk
			res.Strategy = prev.Strategy
		}
	}

	o.mu.Lock()
	o.cachedKey = key
	o.cachedRes = res
	o.cacheValid = true
	o.mu.Unlock()

	o.log.Info().
		Str("run_id", res.RunID).
		Str("status", string(res.Status)).
		Float64("managed_risk", res.ManagedRisk).
		Float64("cost", res.Cost).
		Float64("improvement", res.Improvement).
		Int("restarts", res.Restarts).
		Msg("optimization finished")

	return res
}

// search runs up to MaxRestarts attempts, cycling through the repair
// strategies, and returns the overall best candidate.
func (o *Optimizer) search(ev *Evaluator, incumbent Candidate) (Candidate, Evaluation, Strategy, int) {
	best := incumbent
	bestEval := ev.Evaluate(incumbent)
	bestFit := ev.fitness(bestEval)
	bestStrategy := Strategy("")

	restarts := 0
	for r := 0; r < o.cfg.MaxRestarts; r++ {
		strategy := restartStrategies[r%len(restartStrategies)]
		rng := rand.New(rand.NewSource(o.restartSeed(strategy, r)))
		restarts++

		annealed, _ := ev.anneal(incumbent, incumbent, strategy, o.cfg, rng)
		evolved, _ := ev.evolve(annealed, incumbent, strategy, o.cfg, rng)
		refined, refinedEval := ev.localSearch(evolved, incumbent, strategy, o.cfg)

		fit := ev.fitness(refinedEval)
		if fit < bestFit {
			best, bestEval, bestFit, bestStrategy = refined, refinedEval, fit, strategy
		}

		o.log.Debug().
			Str("strategy", string(strategy)).
			Int("restart", r+1).
			Float64("risk", refinedEval.Risk).
			Float64("cost", refinedEval.Cost).
			Bool("valid_budget", refinedEval.ValidBudget).
			Msg("restart complete")
	}

	return best, bestEval, bestStrategy, restarts
}

// restartSeed derives an independent deterministic stream per restart
// from the base seed.
func (o *Optimizer) restartSeed(strategy Strategy, restart int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s-%d", strategy, restart)
	return o.cfg.Seed ^ int64(h.Sum64())
}

// stateKey hashes everything that can change the optimizer's answer.
func (o *Optimizer) stateKey(in Input) string {
	units := make([]hash.UnitState, len(in.Units))
	for i, u := range in.Units {
		units[i] = hash.UnitState{Code: u.Code, Risk: u.Baseline, Volume: u.Volume}
	}

	settings := map[string]float64{
		"focus":         in.Focus,
		"target_budget": in.TargetBudget,
		"tolerance":     in.Tolerance,
		"hourly_rate":   in.Assumptions.HourlyRate,
		"unit_count":    float64(in.Assumptions.UnitCount),
	}
	for i, v := range in.ToolEffectiveness {
		settings[fmt.Sprintf("tool_eff_%d", i)] = v
	}
	for i, v := range in.ResponseEffectiveness {
		settings[fmt.Sprintf("response_eff_%d", i)] = v
	}

	return hash.StateKey(units, in.Current.Tools[:], in.Current.Responses[:], settings)
}
