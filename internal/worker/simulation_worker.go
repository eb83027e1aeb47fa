package worker

// simulation_worker.go processes background simulation runs: scheduled
// repricings and the async variant of POST /v1/simulations. On success it
// chains a notification job when a recipient is configured.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
)

// SimulationJobPayload is the job envelope sent to QueueSimulation.
type SimulationJobPayload struct {
	RulesetID   string  `json:"ruleset_id"`
	Category    *string `json:"category,omitempty"`
	RequestedBy string  `json:"requested_by"`
}

type SimulationWorker struct {
	sims       service.SimulationService
	dispatcher *Dispatcher
	// notifyEmail receives the summary of every background run; empty
	// disables the notification chain.
	notifyEmail string
}

func NewSimulationWorker(sims service.SimulationService, dispatcher *Dispatcher, notifyEmail string) *SimulationWorker {
	return &SimulationWorker{sims: sims, dispatcher: dispatcher, notifyEmail: notifyEmail}
}

func (w *SimulationWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SimulationJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("simulation_worker: invalid payload")
		return nil // malformed payloads never succeed, don't retry
	}

	resp, err := w.sims.Simulate(ctx, dto.RunSimulationRequest{
		RulesetID: payload.RulesetID,
		Category:  payload.Category,
	}, payload.RequestedBy)
	if err != nil {
		// Business refusals are terminal: retrying a ruleset with no active
		// rules or an empty population cannot succeed.
		if errors.Is(err, service.ErrRulesetNotFound) ||
			errors.Is(err, service.ErrNoActiveRules) ||
			errors.Is(err, service.ErrEmptyPopulation) {
			log.Warn().
				Str("ruleset_id", payload.RulesetID).
				Err(err).
				Msg("simulation_worker: run refused")
			return nil
		}
		return err
	}

	log.Info().
		Str("simulation_id", resp.ID).
		Str("ruleset_id", payload.RulesetID).
		Int("affected_count", resp.AffectedCount).
		Msg("simulation_worker: run completed")

	if w.notifyEmail != "" {
		if err := w.dispatcher.EnqueueNotify(ctx, NotifyJobPayload{
			SimulationID: resp.ID,
			ToEmail:      w.notifyEmail,
		}); err != nil {
			log.Error().Err(err).Str("simulation_id", resp.ID).Msg("simulation_worker: enqueue notify failed")
		}
	}
	return nil
}
