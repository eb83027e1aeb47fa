package dto

import "github.com/shopspring/decimal"

// RunSimulationRequest triggers a dry-run over the active catalog, optionally
// narrowed to one category.
type RunSimulationRequest struct {
	RulesetID string  `json:"ruleset_id" validate:"required,uuid4"`
	Category  *string `json:"category"`
}

type SimulationItemResponse struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	ProductName    string           `json:"product_name,omitempty"`
	RuleID         string           `json:"rule_id"`
	RuleType       string           `json:"rule_type"`
	OldPriceHT     decimal.Decimal  `json:"old_price_ht"`
	NewPriceHT     decimal.Decimal  `json:"new_price_ht"`
	PriceChangePct decimal.Decimal  `json:"price_change_percent"`
	OldMarginPct   *decimal.Decimal `json:"old_margin_percent,omitempty"`
	NewMarginPct   *decimal.Decimal `json:"new_margin_percent,omitempty"`
	Reason         string           `json:"reason"`
	BlockedByGuard bool             `json:"blocked_by_guard"`
}

type SimulationResponse struct {
	ID            string                   `json:"id"`
	RulesetID     string                   `json:"ruleset_id"`
	Category      *string                  `json:"category,omitempty"`
	Status        string                   `json:"status"`
	ProductCount  int                      `json:"product_count"`
	AffectedCount int                      `json:"affected_count"`
	AvgChangePct  decimal.Decimal          `json:"avg_change_pct"`
	CreatedBy     string                   `json:"created_by"`
	CreatedAt     string                   `json:"created_at"`
	AppliedBy     *string                  `json:"applied_by,omitempty"`
	AppliedAt     *string                  `json:"applied_at,omitempty"`
	Items         []SimulationItemResponse `json:"items,omitempty"`
}

// SimulationFilter narrows GET /v1/simulations.
type SimulationFilter struct {
	Status    string `form:"status"`
	RulesetID string `form:"ruleset_id"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

type SimulationListResponse struct {
	Data  []SimulationResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ApplyResponse reports a possibly partial commit: AppliedCount < Total means
// some items were skipped (drifted price, missing product).
type ApplyResponse struct {
	SimulationID string `json:"simulation_id"`
	AppliedCount int    `json:"applied_count"`
	SkippedCount int    `json:"skipped_count"`
	Total        int    `json:"total"`
}

type RollbackResponse struct {
	SimulationID    string `json:"simulation_id"`
	RolledBackCount int    `json:"rolled_back_count"`
	SkippedCount    int    `json:"skipped_count"`
	Total           int    `json:"total"`
}
