// Package pricing holds the pure core of the repricing engine: typed rule
// variants, the priority-ordered evaluator and the margin guard. Nothing in
// this package touches a store or reads the clock; callers pass snapshots
// and an explicit "now", which keeps simulations deterministic and replayable.
package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// SeasonalityParams adjusts the price during the listed calendar months.
type SeasonalityParams struct {
	Months            []int           `json:"months"`
	AdjustmentPercent decimal.Decimal `json:"adjustment_percent"`
}

// LowStockParams raises (or lowers) the price when stock is at or under the
// threshold. Unknown stock never triggers.
type LowStockParams struct {
	Threshold         int             `json:"threshold"`
	AdjustmentPercent decimal.Decimal `json:"adjustment_percent"`
}

// LowRotationParams discounts products that have not sold for a while.
type LowRotationParams struct {
	DaysWithoutSale int             `json:"days_without_sale"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// MarginGuardParams is the constraint overlay: realized margin may never drop
// below MinMarginPercent when the cost basis is known.
type MarginGuardParams struct {
	MinMarginPercent decimal.Decimal `json:"min_margin_percent"`
}

// Rule is the tagged-variant form of a stored rule: exactly one params pointer
// is non-nil, matching Type.
type Rule struct {
	ID       uuid.UUID
	Name     string
	Type     string
	Priority int

	Seasonality *SeasonalityParams
	LowStock    *LowStockParams
	LowRotation *LowRotationParams
	MarginGuard *MarginGuardParams
}

// IsGuard reports whether the rule is the margin_guard overlay rather than a
// price proposer.
func (r Rule) IsGuard() bool { return r.Type == model.RuleTypeMarginGuard }

// ParseRule decodes a stored rule's jsonb params into the typed variant.
func ParseRule(m model.Rule) (Rule, error) {
	r := Rule{ID: m.ID, Name: m.Name, Type: m.RuleType, Priority: m.Priority}

	switch m.RuleType {
	case model.RuleTypeSeasonality:
		p := &SeasonalityParams{}
		if err := json.Unmarshal(m.Params, p); err != nil {
			return Rule{}, fmt.Errorf("rule %s: seasonality params: %w", m.ID, err)
		}
		for _, month := range p.Months {
			if month < 1 || month > 12 {
				return Rule{}, fmt.Errorf("rule %s: month %d out of range", m.ID, month)
			}
		}
		r.Seasonality = p
	case model.RuleTypeLowStock:
		p := &LowStockParams{}
		if err := json.Unmarshal(m.Params, p); err != nil {
			return Rule{}, fmt.Errorf("rule %s: low_stock params: %w", m.ID, err)
		}
		if p.Threshold < 0 {
			return Rule{}, fmt.Errorf("rule %s: negative stock threshold", m.ID)
		}
		r.LowStock = p
	case model.RuleTypeLowRotation:
		p := &LowRotationParams{}
		if err := json.Unmarshal(m.Params, p); err != nil {
			return Rule{}, fmt.Errorf("rule %s: low_rotation params: %w", m.ID, err)
		}
		if p.DaysWithoutSale < 1 {
			return Rule{}, fmt.Errorf("rule %s: days_without_sale must be >= 1", m.ID)
		}
		r.LowRotation = p
	case model.RuleTypeMarginGuard:
		p := &MarginGuardParams{}
		if err := json.Unmarshal(m.Params, p); err != nil {
			return Rule{}, fmt.Errorf("rule %s: margin_guard params: %w", m.ID, err)
		}
		if p.MinMarginPercent.IsNegative() || p.MinMarginPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return Rule{}, fmt.Errorf("rule %s: min_margin_percent must be in [0,100)", m.ID)
		}
		r.MarginGuard = p
	default:
		return Rule{}, fmt.Errorf("rule %s: unknown rule_type %q", m.ID, m.RuleType)
	}

	return r, nil
}

// ParseRules decodes a ruleset's stored rules and splits them into proposers
// (sorted ascending by priority) and guards. Inactive rules must be filtered
// by the caller before this point.
func ParseRules(stored []model.Rule) (proposers, guards []Rule, err error) {
	for _, m := range stored {
		r, err := ParseRule(m)
		if err != nil {
			return nil, nil, err
		}
		if r.IsGuard() {
			guards = append(guards, r)
		} else {
			proposers = append(proposers, r)
		}
	}
	sortByPriority(proposers)
	return proposers, guards, nil
}
