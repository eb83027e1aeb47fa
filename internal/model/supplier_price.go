package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierPrice is one supplier's unit cost for a product, fed by the import
// screens. The engine's cost basis for a product is the lowest known unit_cost
// across suppliers; a product with no row has an unknown cost and is never
// guard-checked.
type SupplierPrice struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierName string    `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SupplierPrice) TableName() string { return "supplier_prices" }
