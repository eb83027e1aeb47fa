package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is the per-product input to one evaluation. Cost is nil when no
// supplier price is known; StockQuantity is nil when the stock level is
// unknown. DaysSinceLastSale defaults to 0 (recently sold) when the product
// has no sale inside the lookback window the caller queried; the engine never
// auto-discounts a product it cannot prove is stale.
type Snapshot struct {
	ProductID         uuid.UUID
	Category          string
	PriceHT           decimal.Decimal
	Cost              *decimal.Decimal
	StockQuantity     *int
	DaysSinceLastSale int
}

// Proposal is the outcome of walking the proposer rules: at most one rule
// fires per product.
type Proposal struct {
	NewPrice decimal.Decimal
	RuleID   uuid.UUID
	RuleType string
	Reason   string
}

// Evaluate walks the proposer rules in ascending priority order and returns
// the first triggering rule's candidate price, or nil when no rule fires.
// Guards are applied separately (ApplyGuards); now supplies the calendar month
// for seasonality rules.
func Evaluate(snap Snapshot, proposers []Rule, now time.Time) *Proposal {
	for _, r := range proposers {
		switch r.Type {
		case model.RuleTypeSeasonality:
			p := r.Seasonality
			if p == nil || !monthIn(p.Months, int(now.Month())) {
				continue
			}
			factor := decimal.NewFromInt(1).Add(p.AdjustmentPercent.Div(hundred))
			return &Proposal{
				NewPrice: snap.PriceHT.Mul(factor),
				RuleID:   r.ID,
				RuleType: r.Type,
				Reason:   fmt.Sprintf("Règle saisonnière « %s » : ajustement de %s%% (mois %d)", r.Name, p.AdjustmentPercent.String(), int(now.Month())),
			}
		case model.RuleTypeLowStock:
			p := r.LowStock
			// Unknown stock level: the rule never triggers.
			if p == nil || snap.StockQuantity == nil {
				continue
			}
			qty := *snap.StockQuantity
			if qty < 0 || qty > p.Threshold {
				continue
			}
			factor := decimal.NewFromInt(1).Add(p.AdjustmentPercent.Div(hundred))
			return &Proposal{
				NewPrice: snap.PriceHT.Mul(factor),
				RuleID:   r.ID,
				RuleType: r.Type,
				Reason:   fmt.Sprintf("Stock faible « %s » : %d unité(s) restante(s) (seuil %d), ajustement de %s%%", r.Name, qty, p.Threshold, p.AdjustmentPercent.String()),
			}
		case model.RuleTypeLowRotation:
			p := r.LowRotation
			if p == nil || snap.DaysSinceLastSale < p.DaysWithoutSale {
				continue
			}
			factor := decimal.NewFromInt(1).Sub(p.DiscountPercent.Div(hundred))
			return &Proposal{
				NewPrice: snap.PriceHT.Mul(factor),
				RuleID:   r.ID,
				RuleType: r.Type,
				Reason:   fmt.Sprintf("Faible rotation « %s » : aucune vente depuis %d jours (seuil %d), remise de %s%%", r.Name, snap.DaysSinceLastSale, p.DaysWithoutSale, p.DiscountPercent.String()),
			}
		}
	}
	return nil
}

// MarginPercent returns the realized margin on the selling price:
// (price − cost) / price × 100. Returns nil when cost is unknown or price is
// zero.
func MarginPercent(price decimal.Decimal, cost *decimal.Decimal) *decimal.Decimal {
	if cost == nil || price.IsZero() {
		return nil
	}
	m := price.Sub(*cost).Div(price).Mul(hundred)
	return &m
}

// ChangePercent returns (newPrice − oldPrice) / oldPrice × 100, or zero when
// the old price is zero.
func ChangePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(hundred)
}

func monthIn(months []int, month int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

func sortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
}
