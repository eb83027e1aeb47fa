package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Rule types understood by the evaluator. Exactly one type (margin_guard) is a
// constraint overlay; the others are mutually exclusive price proposers walked
// in ascending priority order.
const (
	RuleTypeSeasonality = "seasonality"
	RuleTypeLowStock    = "low_stock"
	RuleTypeLowRotation = "low_rotation"
	RuleTypeMarginGuard = "margin_guard"
)

// Ruleset is a named, versionable collection of pricing rules. Editing a
// ruleset only affects future simulations: completed simulations carry the
// computed prices, never the rules themselves.
type Ruleset struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Rules []Rule `gorm:"foreignKey:RulesetID"`
}

func (Ruleset) TableName() string { return "rulesets" }

// Rule is one pricing condition+action inside a ruleset. Params is a
// rule-type-specific bag stored as jsonb:
//
//	seasonality  → {"months": [1..12], "adjustment_percent": n}
//	low_stock    → {"threshold": n, "adjustment_percent": n}
//	low_rotation → {"days_without_sale": n, "discount_percent": n}
//	margin_guard → {"min_margin_percent": n}
type Rule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RulesetID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	RuleType  string    `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	// Priority ascending = higher precedence; the first triggering rule wins.
	Priority  int            `gorm:"not null;default:100"`
	Params    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Rule) TableName() string { return "rules" }
