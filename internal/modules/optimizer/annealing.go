package optimizer

import (
	"math"
	"math/rand"
)

// anneal runs simulated annealing with geometric cooling and Metropolis
// acceptance, starting from the given candidate. Returns the best
// candidate seen and its evaluation.
func (e *Evaluator) anneal(start, incumbent Candidate, strategy Strategy, cfg Config, rng *rand.Rand) (Candidate, Evaluation) {
	current := e.repairBudget(start, incumbent, strategy, cfg.Link)
	currentEval := e.Evaluate(current)
	currentFit := e.fitness(currentEval)

	best, bestEval, bestFit := current, currentEval, currentFit

	temperature := cfg.InitialTemperature
	slots := adjustableSlots(cfg.Link)

	for i := 0; i < cfg.AnnealingIterations; i++ {
		if cfg.Progress != nil {
			cfg.Progress("annealing", i+1, cfg.AnnealingIterations)
		}

		neighbor := e.perturb(current, incumbent, strategy, cfg, rng, slots)
		neighborEval := e.Evaluate(neighbor)
		neighborFit := e.fitness(neighborEval)

		delta := neighborFit - currentFit
		if delta <= 0 || rng.Float64() < math.Exp(-delta/math.Max(temperature, 1e-9)) {
			current, currentEval, currentFit = neighbor, neighborEval, neighborFit
		}

		if currentFit < bestFit {
			best, bestEval, bestFit = current, currentEval, currentFit
		}

		temperature *= cfg.CoolingRate
	}

	return best, bestEval
}

// perturb moves one or two random slots by a bounded step and repairs the
// result back toward budget.
func (e *Evaluator) perturb(c, incumbent Candidate, strategy Strategy, cfg Config, rng *rand.Rand, slots []slotRef) Candidate {
	moves := 1 + rng.Intn(2)
	for m := 0; m < moves; m++ {
		s := slots[rng.Intn(len(slots))]
		step := (rng.Float64()*2 - 1) * cfg.MutationSpan
		c.set(s, c.get(s)+step)
	}
	return e.repairBudget(c, incumbent, strategy, cfg.Link)
}
