package optimizer

// localSearchSteps are the coordinate step sizes tried in order: a coarse
// pass first, then fine adjustment.
var localSearchSteps = []float64{5, 1}

// maxLocalPasses bounds hill-climbing; in practice it converges in a few
// sweeps.
const maxLocalPasses = 40

// localSearch runs coordinate-wise hill climbing until no single-slot
// perturbation improves fitness at any step size.
func (e *Evaluator) localSearch(start, incumbent Candidate, strategy Strategy, cfg Config) (Candidate, Evaluation) {
	best := start
	bestEval := e.Evaluate(best)
	bestFit := e.fitness(bestEval)

	slots := adjustableSlots(cfg.Link)
	pass := 0

	for _, step := range localSearchSteps {
		improved := true
		for improved && pass < maxLocalPasses {
			improved = false
			pass++
			if cfg.Progress != nil {
				cfg.Progress("local_search", pass, maxLocalPasses)
			}

			for _, s := range slots {
				for _, direction := range []float64{step, -step} {
					trial := best
					trial.set(s, trial.get(s)+direction)
					trial = e.repairBudget(trial, incumbent, strategy, cfg.Link)

					ev := e.Evaluate(trial)
					fit := e.fitness(ev)
					if fit < bestFit {
						best, bestEval, bestFit = trial, ev, fit
						improved = true
					}
				}
			}
		}
	}

	return best, bestEval
}
