package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/modules/optimizer"
	"github.com/aristath/chain-sentry/internal/services"
)

// ReoptimizeJob re-runs the optimizer against the current working state.
// When nothing changed since the last run the optimizer answers from its
// state-hash cache, so the scheduled run is effectively free.
type ReoptimizeJob struct {
	engine *services.Engine
	log    zerolog.Logger
}

// NewReoptimizeJob creates the scheduled re-optimization job.
func NewReoptimizeJob(engine *services.Engine, log zerolog.Logger) *ReoptimizeJob {
	return &ReoptimizeJob{
		engine: engine,
		log:    log.With().Str("job", "reoptimize").Logger(),
	}
}

// Name returns the job name.
func (j *ReoptimizeJob) Name() string {
	return "reoptimize"
}

// Run executes one re-optimization cycle.
func (j *ReoptimizeJob) Run() error {
	res, err := j.engine.Optimize()
	if err != nil {
		return err
	}

	switch res.Status {
	case optimizer.StatusAlreadyOptimized:
		j.log.Info().Str("state_hash", res.StateHash).Msg("State unchanged since last run, nothing to do")
	case optimizer.StatusOptimized:
		j.log.Info().
			Str("run_id", res.RunID).
			Float64("managed_risk", res.ManagedRisk).
			Float64("improvement", res.Improvement).
			Msg("Found a better allocation")
	default:
		j.log.Info().
			Str("run_id", res.RunID).
			Str("status", string(res.Status)).
			Msg("Re-optimization finished without a new allocation")
	}
	return nil
}
