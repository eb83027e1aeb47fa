package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// PriceLogRepository appends to and reads the price ledger. There is no
// update or delete on purpose: rollback appends mirror entries, history is
// never rewritten.
type PriceLogRepository interface {
	CreateTx(tx *gorm.DB, entry *model.PriceChangeLog) error
	// ListOriginalsBySimulationTx returns the non-rollback entries of one
	// simulation, inside the rollback transaction.
	ListOriginalsBySimulationTx(tx *gorm.DB, simulationID uuid.UUID) ([]model.PriceChangeLog, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error)
	CountBySimulation(ctx context.Context, simulationID uuid.UUID) (int64, error)
}

type priceLogRepo struct{ db *gorm.DB }

func NewPriceLogRepository(db *gorm.DB) PriceLogRepository { return &priceLogRepo{db: db} }

func (r *priceLogRepo) CreateTx(tx *gorm.DB, entry *model.PriceChangeLog) error {
	return tx.Create(entry).Error
}

func (r *priceLogRepo) ListOriginalsBySimulationTx(tx *gorm.DB, simulationID uuid.UUID) ([]model.PriceChangeLog, error) {
	var entries []model.PriceChangeLog
	err := tx.Where("simulation_id = ? AND is_rollback = false", simulationID).
		Order("applied_at ASC").
		Find(&entries).Error
	return entries, err
}

// ListByProduct returns paginated ledger rows for one product, newest first
// (append-only table, so this mirrors insert order).
func (r *priceLogRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceChangeLog{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceChangeLog
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("applied_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *priceLogRepo) CountBySimulation(ctx context.Context, simulationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PriceChangeLog{}).
		Where("simulation_id = ?", simulationID).
		Count(&n).Error
	return n, err
}
