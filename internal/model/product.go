package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry the engine reprices. Only price_ht is ever
// written by this service (on Apply/Rollback); everything else belongs to the
// catalog screens. PriceHT is the selling price excluding VAT (hors taxe).
// StockQuantity is NULL when the stock feed has no figure for the product;
// low_stock rules then never trigger.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	Category      string    `gorm:"index;not null"`
	PriceHT       decimal.Decimal `gorm:"column:price_ht;type:decimal(10,2);not null"`
	StockQuantity *int
	IsActive      bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Product) TableName() string { return "products" }
