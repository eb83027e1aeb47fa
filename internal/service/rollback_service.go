package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
	"github.com/Neo52000/ma-papeterie-sub003/internal/pricing"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// RollbackService reverts an applied simulation from the price ledger.
// A rollback is itself not re-rollback-able: re-applying the original
// simulation is rejected because its status is no longer 'completed'.
type RollbackService interface {
	Rollback(ctx context.Context, simulationID uuid.UUID, actor string) (*dto.RollbackResponse, error)
}

type rollbackService struct {
	sims     repository.SimulationRepository
	products repository.ProductRepository
	logs     repository.PriceLogRepository
	metrics  *infra.Metrics
	now      func() time.Time
}

func NewRollbackService(
	sims repository.SimulationRepository,
	products repository.ProductRepository,
	logs repository.PriceLogRepository,
	metrics *infra.Metrics,
) RollbackService {
	return &rollbackService{sims: sims, products: products, logs: logs, metrics: metrics, now: time.Now}
}

// Rollback restores each product to the old_price_ht recorded in the ledger
// and appends one mirror entry per original entry (is_rollback=true, old/new
// swapped, rollback_of pointing at the original). The ledger itself is never
// edited. The applied → rolled_back transition is claimed with a single
// conditional update inside the transaction, closing the race with a
// concurrent Rollback.
func (s *rollbackService) Rollback(ctx context.Context, simulationID uuid.UUID, actor string) (*dto.RollbackResponse, error) {
	sim, err := s.sims.FindByID(ctx, simulationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSimulationNotFound
		}
		return nil, err
	}
	if sim.Status != model.SimulationApplied {
		return nil, ErrInvalidState
	}

	var reverted, skipped, total int
	revertedAt := s.now()

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		claimed, err := s.sims.MarkRolledBackTx(tx, simulationID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrInvalidState
		}

		originals, err := s.logs.ListOriginalsBySimulationTx(tx, simulationID)
		if err != nil {
			return err
		}
		total = len(originals)

		for i := range originals {
			orig := &originals[i]
			if _, err := s.products.FindByIDTx(tx, orig.ProductID); err != nil {
				skipped++
				log.Warn().
					Str("simulation_id", simulationID.String()).
					Str("product_id", orig.ProductID.String()).
					Msg("rollback: product missing, entry skipped")
				continue
			}

			if err := s.products.UpdatePriceTx(tx, orig.ProductID, orig.OldPriceHT); err != nil {
				return err
			}
			mirror := model.PriceChangeLog{
				ProductID:      orig.ProductID,
				SimulationID:   orig.SimulationID,
				RuleType:       orig.RuleType,
				OldPriceHT:     orig.NewPriceHT,
				NewPriceHT:     orig.OldPriceHT,
				PriceChangePct: pricing.ChangePercent(orig.NewPriceHT, orig.OldPriceHT).Round(2),
				OldMarginPct:   orig.NewMarginPct,
				NewMarginPct:   orig.OldMarginPct,
				Reason:         fmt.Sprintf("Annulation de l'application de la simulation %s", simulationID),
				AppliedBy:      actor,
				AppliedAt:      revertedAt,
				IsRollback:     true,
				RollbackOf:     &orig.ID,
			}
			if err := s.logs.CreateTx(tx, &mirror); err != nil {
				return err
			}
			reverted++
		}

		if reverted == 0 {
			return ErrNothingApplied
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.RecordItemsRolledBack(reverted)
	s.metrics.RecordSimulation(model.SimulationRolledBack, s.now().Sub(revertedAt))
	log.Info().
		Str("simulation_id", simulationID.String()).
		Int("reverted", reverted).
		Int("skipped", skipped).
		Int("total", total).
		Str("rolled_back_by", actor).
		Msg("simulation rolled back")

	return &dto.RollbackResponse{
		SimulationID:    simulationID.String(),
		RolledBackCount: reverted,
		SkippedCount:    skipped,
		Total:           total,
	}, nil
}
