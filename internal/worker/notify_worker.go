package worker

// notify_worker.go emails the simulation summary, with the PDF review report
// attached, to the configured recipient. SMTP calls go through the circuit
// breaker so a downed relay fast-fails into the retry path.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
)

// NotifyJobPayload is the job envelope sent to QueueNotify.
type NotifyJobPayload struct {
	SimulationID string `json:"simulation_id"`
	ToEmail      string `json:"to_email"`
}

type NotifyWorker struct {
	sims   service.SimulationService
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewNotifyWorker(sims service.SimulationService, mailer *infra.Mailer, cb *infra.CircuitBreaker) *NotifyWorker {
	return &NotifyWorker{sims: sims, mailer: mailer, cb: cb}
}

func (w *NotifyWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload NotifyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("notify_worker: empty to_email, skipping")
		return nil
	}

	simID, err := uuid.Parse(payload.SimulationID)
	if err != nil {
		log.Error().Str("simulation_id", payload.SimulationID).Msg("notify_worker: bad simulation id")
		return nil
	}

	sim, err := w.sims.Get(ctx, simID)
	if err != nil {
		return err
	}

	pdfPath, err := w.sims.ReportPDF(ctx, simID)
	if err != nil {
		log.Error().Err(err).Str("simulation_id", payload.SimulationID).Msg("notify_worker: PDF generation failed")
		pdfPath = "" // send the summary anyway
	}

	subject := fmt.Sprintf("Simulation tarifaire %s : %d produit(s) impacté(s)", sim.ID, sim.AffectedCount)
	body := fmt.Sprintf(
		"Simulation %s\n\nProduits évalués : %d\nProduits impactés : %d\nVariation moyenne : %s %%\nStatut : %s\n\nLe rapport détaillé est joint.",
		sim.ID, sim.ProductCount, sim.AffectedCount, sim.AvgChangePct.StringFixed(2), sim.Status,
	)

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendReport(payload.ToEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", payload.ToEmail).Msg("notify_worker: send failed")
		return sendErr
	}

	log.Info().
		Str("simulation_id", payload.SimulationID).
		Str("to", payload.ToEmail).
		Msg("notify_worker: report sent")
	return nil
}
