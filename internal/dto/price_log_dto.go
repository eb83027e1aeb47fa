package dto

import "github.com/shopspring/decimal"

// PriceLogItem is one row of a product's append-only price ledger.
type PriceLogItem struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	SimulationID   string           `json:"simulation_id"`
	RuleType       string           `json:"rule_type"`
	OldPriceHT     decimal.Decimal  `json:"old_price_ht"`
	NewPriceHT     decimal.Decimal  `json:"new_price_ht"`
	PriceChangePct decimal.Decimal  `json:"price_change_percent"`
	OldMarginPct   *decimal.Decimal `json:"old_margin_percent,omitempty"`
	NewMarginPct   *decimal.Decimal `json:"new_margin_percent,omitempty"`
	Reason         string           `json:"reason"`
	AppliedBy      string           `json:"applied_by"`
	AppliedAt      string           `json:"applied_at"`
	IsRollback     bool             `json:"is_rollback"`
	RollbackOf     *string          `json:"rollback_of,omitempty"`
}

type PriceLogListResponse struct {
	Data  []PriceLogItem `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
