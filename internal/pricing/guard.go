package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GuardResult is the outcome of clamping a candidate price against the active
// margin guards.
type GuardResult struct {
	Price   decimal.Decimal
	Blocked bool
	// Note is appended to the proposing rule's reason when the guard fired.
	Note string
}

// ApplyGuards raises the candidate price until every guard's margin floor is
// satisfied. Guards never lower a price, and a product with unknown cost is
// never guard-checked (the guard is a no-op, not a block).
//
// For a floor m, the minimum price satisfying (price − cost) / price ≥ m/100
// is cost / (1 − m/100); the candidate is replaced whenever that floor price
// exceeds it.
func ApplyGuards(candidate decimal.Decimal, cost *decimal.Decimal, guards []Rule) GuardResult {
	res := GuardResult{Price: candidate}
	if cost == nil {
		return res
	}

	for _, g := range guards {
		p := g.MarginGuard
		if p == nil || p.MinMarginPercent.GreaterThanOrEqual(hundred) {
			continue
		}
		margin := MarginPercent(res.Price, cost)
		if margin != nil && margin.GreaterThanOrEqual(p.MinMarginPercent) {
			continue
		}
		floor := cost.Div(decimal.NewFromInt(1).Sub(p.MinMarginPercent.Div(hundred)))
		if floor.GreaterThan(res.Price) {
			res.Price = floor
			res.Blocked = true
			res.Note = fmt.Sprintf(" | Garde-fou de marge « %s » : prix relevé au plancher (marge minimale %s%%)", g.Name, p.MinMarginPercent.String())
		}
	}
	return res
}
