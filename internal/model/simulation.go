package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Simulation statuses. Transitions are one-way:
// completed → applied → rolled_back, each at most once.
const (
	SimulationCompleted  = "completed"
	SimulationApplied    = "applied"
	SimulationRolledBack = "rolled_back"
)

// Simulation is a persisted dry-run of rule evaluation across the product
// population. It never touches live prices; only Apply does.
type Simulation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RulesetID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Category optionally narrows the product population.
	Category      *string
	Status        string          `gorm:"not null;default:'completed';index"`
	ProductCount  int             `gorm:"not null"`
	AffectedCount int             `gorm:"not null"`
	AvgChangePct  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CreatedBy     string          `gorm:"not null"`
	CreatedAt     time.Time
	AppliedBy     *string
	AppliedAt     *time.Time

	Ruleset *Ruleset         `gorm:"foreignKey:RulesetID"`
	Items   []SimulationItem `gorm:"foreignKey:SimulationID"`
}

func (Simulation) TableName() string { return "simulations" }

// SimulationItem is one proposed price change. Rows are written once per
// changed product and never updated afterwards. Margin columns stay NULL when
// the product has no known cost basis.
type SimulationItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SimulationID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;index"`
	RuleID           uuid.UUID `gorm:"type:uuid;not null"`
	RuleType         string    `gorm:"not null"`
	OldPriceHT       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPriceHT       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceChangePct   decimal.Decimal `gorm:"column:price_change_percent;type:decimal(6,2);not null"`
	OldMarginPct     *decimal.Decimal `gorm:"column:old_margin_percent;type:decimal(6,2)"`
	NewMarginPct     *decimal.Decimal `gorm:"column:new_margin_percent;type:decimal(6,2)"`
	Reason           string `gorm:"not null"`
	BlockedByGuard   bool   `gorm:"not null;default:false"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (SimulationItem) TableName() string { return "simulation_items" }
