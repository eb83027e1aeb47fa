package dto

import "encoding/json"

// CreateRulesetRequest creates an empty ruleset; rules are attached afterwards.
type CreateRulesetRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
	Rules       []RuleRequest `json:"rules" validate:"omitempty,dive"`
}

// UpdateRulesetRequest renames/describes/toggles a ruleset. Rule edits go
// through the dedicated rule endpoints.
type UpdateRulesetRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// RuleRequest creates or replaces one rule. Params is validated against the
// rule_type before persisting.
type RuleRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=120"`
	RuleType string          `json:"rule_type" validate:"required,oneof=seasonality low_stock low_rotation margin_guard"`
	Priority int             `json:"priority" validate:"gte=0"`
	IsActive *bool           `json:"is_active"`
	Params   json.RawMessage `json:"params" validate:"required"`
}

type RuleResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	RuleType string          `json:"rule_type"`
	Priority int             `json:"priority"`
	IsActive bool            `json:"is_active"`
	Params   json.RawMessage `json:"params"`
}

type RulesetResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	IsActive    bool           `json:"is_active"`
	Rules       []RuleResponse `json:"rules"`
	CreatedAt   string         `json:"created_at"`
}

type RulesetListResponse struct {
	Data  []RulesetResponse `json:"data"`
	Total int64             `json:"total"`
}
