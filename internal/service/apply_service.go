package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// ApplyService commits a completed simulation's proposed prices to the live
// catalog and writes the audit ledger.
type ApplyService interface {
	Apply(ctx context.Context, simulationID uuid.UUID, actor string) (*dto.ApplyResponse, error)
}

type applyService struct {
	sims     repository.SimulationRepository
	products repository.ProductRepository
	logs     repository.PriceLogRepository
	metrics  *infra.Metrics
	now      func() time.Time
}

func NewApplyService(
	sims repository.SimulationRepository,
	products repository.ProductRepository,
	logs repository.PriceLogRepository,
	metrics *infra.Metrics,
) ApplyService {
	return &applyService{sims: sims, products: products, logs: logs, metrics: metrics, now: time.Now}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Apply runs in one transaction:
//  1. Claim the completed → applied transition with a single conditional
//     update. This is the concurrency gate; a concurrent Apply or Rollback
//     loses the race and gets InvalidState.
//  2. Per item: re-validate the recorded old price against the live product
//     price. Drifted or missing products are skipped and counted, never
//     aborting the batch. Valid items get the simulated price (recorded at
//     simulation time, not re-derived) plus a ledger entry.
//  3. Zero successes roll the whole transaction back: the simulation stays
//     'completed' and the caller gets an error, since nothing changed.
func (s *applyService) Apply(ctx context.Context, simulationID uuid.UUID, actor string) (*dto.ApplyResponse, error) {
	sim, err := s.sims.FindByIDWithItems(ctx, simulationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSimulationNotFound
		}
		return nil, err
	}
	if sim.Status != model.SimulationCompleted {
		return nil, ErrInvalidState
	}

	var applied, skipped int
	appliedAt := s.now()

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		claimed, err := s.sims.MarkAppliedTx(tx, simulationID, actor, appliedAt)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrInvalidState
		}

		for _, item := range sim.Items {
			live, err := s.products.FindByIDTx(tx, item.ProductID)
			if err != nil {
				skipped++
				log.Warn().
					Str("simulation_id", simulationID.String()).
					Str("product_id", item.ProductID.String()).
					Msg("apply: product missing, item skipped")
				continue
			}
			if !live.PriceHT.Equal(item.OldPriceHT) {
				// Price changed out-of-band between simulate and apply;
				// never overwrite blindly.
				skipped++
				log.Warn().
					Str("simulation_id", simulationID.String()).
					Str("product_id", item.ProductID.String()).
					Str("simulated_old", item.OldPriceHT.String()).
					Str("live", live.PriceHT.String()).
					Msg("apply: live price drifted, item skipped")
				continue
			}

			if err := s.products.UpdatePriceTx(tx, item.ProductID, item.NewPriceHT); err != nil {
				return err
			}
			entry := model.PriceChangeLog{
				ProductID:      item.ProductID,
				SimulationID:   sim.ID,
				RuleType:       item.RuleType,
				OldPriceHT:     item.OldPriceHT,
				NewPriceHT:     item.NewPriceHT,
				PriceChangePct: item.PriceChangePct,
				OldMarginPct:   item.OldMarginPct,
				NewMarginPct:   item.NewMarginPct,
				Reason:         item.Reason,
				AppliedBy:      actor,
				AppliedAt:      appliedAt,
				IsRollback:     false,
			}
			if err := s.logs.CreateTx(tx, &entry); err != nil {
				return err
			}
			applied++
		}

		if applied == 0 {
			return ErrNothingApplied
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.RecordItemsApplied(applied)
	s.metrics.RecordSimulation(model.SimulationApplied, s.now().Sub(appliedAt))
	log.Info().
		Str("simulation_id", simulationID.String()).
		Int("applied", applied).
		Int("skipped", skipped).
		Int("total", len(sim.Items)).
		Str("applied_by", actor).
		Msg("simulation applied")

	return &dto.ApplyResponse{
		SimulationID: simulationID.String(),
		AppliedCount: applied,
		SkippedCount: skipped,
		Total:        len(sim.Items),
	}, nil
}
