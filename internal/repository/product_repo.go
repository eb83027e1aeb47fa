package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// ProductRepository reads the catalog and its external pricing context
// (supplier costs, sales recency) and writes exactly one field: price_ht.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// ListActive returns the repriceable population, optionally filtered by
	// category.
	ListActive(ctx context.Context, category *string) ([]model.Product, error)

	// LowestSupplierCosts returns the cheapest known supplier unit cost per
	// product. Products with no supplier price are absent from the map.
	LowestSupplierCosts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// LastSaleDates returns the most recent sale timestamp per product within
	// the lookback window. Products with no sale in the window are absent.
	LastSaleDates(ctx context.Context, productIDs []uuid.UUID, since time.Time) (map[uuid.UUID]time.Time, error)

	// Used inside Apply/Rollback transactions; callers must pass the tx.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdatePriceTx(tx *gorm.DB, id uuid.UUID, priceHT decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) ListActive(ctx context.Context, category *string) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = true")
	if category != nil && *category != "" {
		q = q.Where("category = ?", *category)
	}
	var products []model.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) LowestSupplierCosts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	var rows []struct {
		ProductID uuid.UUID
		MinCost   decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.SupplierPrice{}).
		Select("product_id, MIN(unit_cost) AS min_cost").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	costs := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		costs[row.ProductID] = row.MinCost
	}
	return costs, nil
}

func (r *productRepo) LastSaleDates(ctx context.Context, productIDs []uuid.UUID, since time.Time) (map[uuid.UUID]time.Time, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}
	var rows []struct {
		ProductID uuid.UUID
		LastSale  time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&model.Sale{}).
		Select("product_id, MAX(sold_at) AS last_sale").
		Where("product_id IN ? AND sold_at >= ?", productIDs, since).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dates := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		dates[row.ProductID] = row.LastSale
	}
	return dates, nil
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, id).Error
	return &p, err
}

func (r *productRepo) UpdatePriceTx(tx *gorm.DB, id uuid.UUID, priceHT decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("price_ht", priceHT).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
