package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// simulationItemBatchSize chunks item inserts for large catalogs.
const simulationItemBatchSize = 500

// SimulationRepository persists simulations and their immutable items, and
// owns the one-way status transitions.
type SimulationRepository interface {
	// Create persists the simulation header and its items in one transaction.
	Create(ctx context.Context, sim *model.Simulation, items []model.SimulationItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Simulation, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error)
	List(ctx context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error)

	// MarkAppliedTx atomically claims the completed → applied transition.
	// Returns false when the simulation was not in 'completed'; the caller
	// must treat that as InvalidState, possibly a concurrent apply.
	MarkAppliedTx(tx *gorm.DB, id uuid.UUID, actor string, at time.Time) (bool, error)
	// MarkRolledBackTx atomically claims applied → rolled_back.
	MarkRolledBackTx(tx *gorm.DB, id uuid.UUID) (bool, error)

	DB() *gorm.DB
}

type simulationRepo struct{ db *gorm.DB }

func NewSimulationRepository(db *gorm.DB) SimulationRepository { return &simulationRepo{db: db} }

func (r *simulationRepo) Create(ctx context.Context, sim *model.Simulation, items []model.SimulationItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sim).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SimulationID = sim.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, simulationItemBatchSize).Error
	})
}

func (r *simulationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	var sim model.Simulation
	err := r.db.WithContext(ctx).First(&sim, id).Error
	return &sim, err
}

func (r *simulationRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	var sim model.Simulation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
		Preload("Items.Product").
		First(&sim, id).Error
	return &sim, err
}

func (r *simulationRepo) List(ctx context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Simulation{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.RulesetID != "" {
		q = q.Where("ruleset_id = ?", filter.RulesetID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}

	var sims []model.Simulation
	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&sims).Error
	return sims, total, err
}

func (r *simulationRepo) MarkAppliedTx(tx *gorm.DB, id uuid.UUID, actor string, at time.Time) (bool, error) {
	res := tx.Model(&model.Simulation{}).
		Where("id = ? AND status = ?", id, model.SimulationCompleted).
		Updates(map[string]interface{}{
			"status":     model.SimulationApplied,
			"applied_by": actor,
			"applied_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *simulationRepo) MarkRolledBackTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Simulation{}).
		Where("id = ? AND status = ?", id, model.SimulationApplied).
		Update("status", model.SimulationRolledBack)
	return res.RowsAffected == 1, res.Error
}

func (r *simulationRepo) DB() *gorm.DB { return r.db }
