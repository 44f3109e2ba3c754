package optimizer

import (
	"math/rand"
	"sort"
)

// individual pairs a candidate with its cached fitness so each generation
// evaluates every genome exactly once.
type individual struct {
	candidate Candidate
	eval      Evaluation
	fit       float64
}

// evolve runs the genetic phase: elitism, tournament selection, blended
// crossover, and bounded mutation. The seed candidate (the annealing
// winner) joins the initial population alongside randomized variants of
// the incumbent.
func (e *Evaluator) evolve(seed, incumbent Candidate, strategy Strategy, cfg Config, rng *rand.Rand) (Candidate, Evaluation) {
	population := make([]individual, 0, cfg.PopulationSize)
	population = append(population, e.newIndividual(seed))
	population = append(population, e.newIndividual(e.repairBudget(incumbent, incumbent, strategy, cfg.Link)))

	slots := adjustableSlots(cfg.Link)
	for len(population) < cfg.PopulationSize {
		variant := incumbent
		for _, s := range slots {
			variant.set(s, variant.get(s)+(rng.Float64()*2-1)*cfg.MutationSpan*2.5)
		}
		variant = e.repairBudget(variant, incumbent, strategy, cfg.Link)
		population = append(population, e.newIndividual(variant))
	}
	sortByFitness(population)

	for gen := 0; gen < cfg.Generations; gen++ {
		if cfg.Progress != nil {
			cfg.Progress("genetic", gen+1, cfg.Generations)
		}

		next := make([]individual, 0, cfg.PopulationSize)

		// Elitism: the best genomes survive unchanged.
		elite := cfg.ElitismCount
		if elite > len(population) {
			elite = len(population)
		}
		next = append(next, population[:elite]...)

		for len(next) < cfg.PopulationSize {
			a := tournament(population, cfg.TournamentSize, rng)
			b := tournament(population, cfg.TournamentSize, rng)
			child := crossover(a.candidate, b.candidate, slots, rng)
			child = mutate(child, slots, cfg, rng)
			child = e.repairBudget(child, incumbent, strategy, cfg.Link)
			next = append(next, e.newIndividual(child))
		}

		population = next
		sortByFitness(population)
	}

	return population[0].candidate, population[0].eval
}

func (e *Evaluator) newIndividual(c Candidate) individual {
	ev := e.Evaluate(c)
	return individual{candidate: c, eval: ev, fit: e.fitness(ev)}
}

func sortByFitness(population []individual) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fit < population[j].fit
	})
}

// tournament picks the fittest of k random individuals.
func tournament(population []individual, k int, rng *rand.Rand) individual {
	best := population[rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		challenger := population[rng.Intn(len(population))]
		if challenger.fit < best.fit {
			best = challenger
		}
	}
	return best
}

// crossover blends two parents slot by slot: child = alpha*a + (1-alpha)*b
// with a fresh alpha per slot.
func crossover(a, b Candidate, slots []slotRef, rng *rand.Rand) Candidate {
	child := a
	for _, s := range slots {
		alpha := 0.25 + rng.Float64()*0.5
		child.set(s, alpha*a.get(s)+(1-alpha)*b.get(s))
	}
	return child
}

// mutate perturbs each slot with the configured probability by a bounded
// step.
func mutate(c Candidate, slots []slotRef, cfg Config, rng *rand.Rand) Candidate {
	for _, s := range slots {
		if rng.Float64() < cfg.MutationRate {
			c.set(s, c.get(s)+(rng.Float64()*2-1)*cfg.MutationSpan)
		}
	}
	return c
}
