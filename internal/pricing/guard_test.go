package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

func guardRule(minMargin string) Rule {
	return Rule{
		ID:          uuid.New(),
		Name:        "Marge minimale",
		Type:        model.RuleTypeMarginGuard,
		MarginGuard: &MarginGuardParams{MinMarginPercent: dec(minMargin)},
	}
}

// The reference scenario: a 15% rotation discount proposes 8.50 on a product
// costing 8.50; a 20% floor raises it to 8.50/(1−0.20) = 10.625, i.e. 10.63
// once rounded to the cent; a net increase despite the discount rule.
func TestApplyGuards_ClampsToFloor(t *testing.T) {
	cost := dec("8.50")
	res := ApplyGuards(dec("8.50"), &cost, []Rule{guardRule("20")})

	assert.True(t, res.Blocked)
	assert.True(t, res.Price.Equal(dec("10.625")), "got %s", res.Price)
	assert.True(t, res.Price.Round(2).Equal(dec("10.63")))
	assert.Contains(t, res.Note, "Garde-fou")

	m := MarginPercent(res.Price, &cost)
	require.NotNil(t, m)
	assert.True(t, m.GreaterThanOrEqual(dec("20")), "margin %s under floor", m)
}

func TestApplyGuards_UnknownCostIsNoop(t *testing.T) {
	res := ApplyGuards(dec("3.00"), nil, []Rule{guardRule("50")})
	assert.False(t, res.Blocked)
	assert.True(t, res.Price.Equal(dec("3.00")))
	assert.Empty(t, res.Note)
}

func TestApplyGuards_NeverLowersPrice(t *testing.T) {
	cost := dec("5.00")
	// Candidate 20.00 has a 75% margin; far above the 20% floor.
	res := ApplyGuards(dec("20.00"), &cost, []Rule{guardRule("20")})
	assert.False(t, res.Blocked)
	assert.True(t, res.Price.Equal(dec("20.00")))
}

func TestApplyGuards_HighestFloorWins(t *testing.T) {
	cost := dec("8.00")
	guards := []Rule{guardRule("10"), guardRule("25")}
	res := ApplyGuards(dec("8.00"), &cost, guards)

	require.True(t, res.Blocked)
	// 8.00/(1−0.25) = 10.666…, which also satisfies the 10% floor.
	for _, g := range guards {
		m := MarginPercent(res.Price, &cost)
		require.NotNil(t, m)
		assert.True(t, m.GreaterThanOrEqual(g.MarginGuard.MinMarginPercent))
	}
}

func TestApplyGuards_NoGuards(t *testing.T) {
	cost := dec("9.00")
	res := ApplyGuards(dec("9.50"), &cost, nil)
	assert.False(t, res.Blocked)
	assert.True(t, res.Price.Equal(dec("9.50")))
}
