package worker

// scheduler.go periodically enqueues one background simulation per active
// ruleset, so repricing proposals keep arriving without anyone clicking. The
// runs only simulate; a human still reviews and applies.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// SchedulerConfig holds the dependencies of the scheduling goroutine.
type SchedulerConfig struct {
	Rulesets   repository.RulesetRepository
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// StartScheduler launches a goroutine that ticks every cfg.Interval and
// enqueues a simulation job per active ruleset. Respects ctx for shutdown.
func StartScheduler(ctx context.Context, cfg SchedulerConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("scheduler: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler: shutting down")
				return
			case <-ticker.C:
				enqueueScheduledRuns(ctx, cfg)
			}
		}
	}()
}

func enqueueScheduledRuns(ctx context.Context, cfg SchedulerConfig) {
	rulesets, err := cfg.Rulesets.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: list active rulesets failed")
		return
	}
	for _, rs := range rulesets {
		payload := SimulationJobPayload{
			RulesetID:   rs.ID.String(),
			RequestedBy: "scheduler",
		}
		if err := cfg.Dispatcher.EnqueueSimulation(ctx, payload); err != nil {
			log.Error().Err(err).Str("ruleset_id", rs.ID.String()).Msg("scheduler: enqueue failed")
			continue
		}
		log.Info().Str("ruleset_id", rs.ID.String()).Str("name", rs.Name).Msg("scheduler: simulation enqueued")
	}
}
