package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChangeLog is the append-only price ledger. Rows are never updated or
// deleted; a rollback appends a mirror entry (is_rollback=true, rollback_of set,
// old/new swapped) instead of editing history. This ledger is the sole source
// of truth for reverting an applied simulation.
type PriceChangeLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SimulationID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RuleType       string    `gorm:"not null"`
	OldPriceHT     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	NewPriceHT     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PriceChangePct decimal.Decimal  `gorm:"column:price_change_percent;type:decimal(6,2);not null"`
	OldMarginPct   *decimal.Decimal `gorm:"column:old_margin_percent;type:decimal(6,2)"`
	NewMarginPct   *decimal.Decimal `gorm:"column:new_margin_percent;type:decimal(6,2)"`
	Reason         string           `gorm:"not null"`
	AppliedBy      string           `gorm:"not null"`
	AppliedAt      time.Time        `gorm:"not null"`
	IsRollback     bool             `gorm:"not null;default:false"`
	RollbackOf     *uuid.UUID       `gorm:"type:uuid"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (PriceChangeLog) TableName() string { return "price_change_logs" }
