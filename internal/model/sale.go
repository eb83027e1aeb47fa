package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale is a read-only slice of the order system: one sold line per row. The
// engine only ever asks for MAX(sold_at) per product inside the lookback
// window to derive days_since_last_sale.
type Sale struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;default:1"`
	SoldAt    time.Time `gorm:"not null;index"`
}

func (Sale) TableName() string { return "sales" }
