package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
	"github.com/Neo52000/ma-papeterie-sub003/internal/pricing"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// RulesetService manages rulesets and their rules. Rules are soft-deleted
// (deactivated) so past simulations keep referencing them by id.
type RulesetService interface {
	Create(ctx context.Context, req dto.CreateRulesetRequest) (*dto.RulesetResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RulesetResponse, error)
	List(ctx context.Context) (*dto.RulesetListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateRulesetRequest) (*dto.RulesetResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	AddRule(ctx context.Context, rulesetID uuid.UUID, req dto.RuleRequest) (*dto.RuleResponse, error)
	UpdateRule(ctx context.Context, rulesetID, ruleID uuid.UUID, req dto.RuleRequest) (*dto.RuleResponse, error)
	DeactivateRule(ctx context.Context, rulesetID, ruleID uuid.UUID) error
}

type rulesetService struct {
	rulesets repository.RulesetRepository
}

func NewRulesetService(rulesets repository.RulesetRepository) RulesetService {
	return &rulesetService{rulesets: rulesets}
}

func (s *rulesetService) Create(ctx context.Context, req dto.CreateRulesetRequest) (*dto.RulesetResponse, error) {
	rs := model.Ruleset{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	for _, rr := range req.Rules {
		rule, err := ruleFromRequest(rs.ID, rr)
		if err != nil {
			return nil, err
		}
		rs.Rules = append(rs.Rules, *rule)
	}
	if err := s.rulesets.Create(ctx, &rs); err != nil {
		return nil, err
	}
	log.Info().Str("ruleset_id", rs.ID.String()).Str("name", rs.Name).Int("rules", len(rs.Rules)).Msg("ruleset created")
	return rulesetToResponse(&rs), nil
}

func (s *rulesetService) Get(ctx context.Context, id uuid.UUID) (*dto.RulesetResponse, error) {
	rs, err := s.rulesets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRulesetNotFound
		}
		return nil, err
	}
	return rulesetToResponse(rs), nil
}

func (s *rulesetService) List(ctx context.Context) (*dto.RulesetListResponse, error) {
	rulesets, total, err := s.rulesets.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RulesetResponse, 0, len(rulesets))
	for i := range rulesets {
		out = append(out, *rulesetToResponse(&rulesets[i]))
	}
	return &dto.RulesetListResponse{Data: out, Total: total}, nil
}

func (s *rulesetService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateRulesetRequest) (*dto.RulesetResponse, error) {
	rs, err := s.rulesets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRulesetNotFound
		}
		return nil, err
	}
	rs.Name = req.Name
	rs.Description = req.Description
	if req.IsActive != nil {
		rs.IsActive = *req.IsActive
	}
	if err := s.rulesets.Update(ctx, rs); err != nil {
		return nil, err
	}
	return rulesetToResponse(rs), nil
}

func (s *rulesetService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.rulesets.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRulesetNotFound
		}
		return err
	}
	return s.rulesets.Deactivate(ctx, id)
}

func (s *rulesetService) AddRule(ctx context.Context, rulesetID uuid.UUID, req dto.RuleRequest) (*dto.RuleResponse, error) {
	if _, err := s.rulesets.FindByID(ctx, rulesetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRulesetNotFound
		}
		return nil, err
	}
	rule, err := ruleFromRequest(rulesetID, req)
	if err != nil {
		return nil, err
	}
	if err := s.rulesets.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	log.Info().Str("ruleset_id", rulesetID.String()).Str("rule_id", rule.ID.String()).Str("rule_type", rule.RuleType).Msg("rule added")
	return ruleToResponse(rule), nil
}

func (s *rulesetService) UpdateRule(ctx context.Context, rulesetID, ruleID uuid.UUID, req dto.RuleRequest) (*dto.RuleResponse, error) {
	rule, err := s.rulesets.FindRuleByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if rule.RulesetID != rulesetID {
		return nil, ErrRuleNotFound
	}

	rule.Name = req.Name
	rule.RuleType = req.RuleType
	rule.Priority = req.Priority
	rule.Params = datatypes.JSON(req.Params)
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if _, err := pricing.ParseRule(*rule); err != nil {
		return nil, fmt.Errorf("%w : %v", ErrInvalidRuleParams, err)
	}
	if err := s.rulesets.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return ruleToResponse(rule), nil
}

func (s *rulesetService) DeactivateRule(ctx context.Context, rulesetID, ruleID uuid.UUID) error {
	rule, err := s.rulesets.FindRuleByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	if rule.RulesetID != rulesetID {
		return ErrRuleNotFound
	}
	return s.rulesets.DeactivateRule(ctx, ruleID)
}

// ruleFromRequest validates the params payload against the rule type before
// anything is persisted. A rule that parses here will parse at simulation time.
func ruleFromRequest(rulesetID uuid.UUID, req dto.RuleRequest) (*model.Rule, error) {
	rule := model.Rule{
		RulesetID: rulesetID,
		Name:      req.Name,
		RuleType:  req.RuleType,
		Priority:  req.Priority,
		IsActive:  true,
		Params:    datatypes.JSON(req.Params),
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if _, err := pricing.ParseRule(rule); err != nil {
		return nil, fmt.Errorf("%w : %v", ErrInvalidRuleParams, err)
	}
	return &rule, nil
}

func ruleToResponse(r *model.Rule) *dto.RuleResponse {
	return &dto.RuleResponse{
		ID:       r.ID.String(),
		Name:     r.Name,
		RuleType: r.RuleType,
		Priority: r.Priority,
		IsActive: r.IsActive,
		Params:   []byte(r.Params),
	}
}

func rulesetToResponse(rs *model.Ruleset) *dto.RulesetResponse {
	rules := make([]dto.RuleResponse, 0, len(rs.Rules))
	for i := range rs.Rules {
		rules = append(rules, *ruleToResponse(&rs.Rules[i]))
	}
	return &dto.RulesetResponse{
		ID:          rs.ID.String(),
		Name:        rs.Name,
		Description: rs.Description,
		IsActive:    rs.IsActive,
		Rules:       rules,
		CreatedAt:   rs.CreatedAt.UTC().Format(time.RFC3339),
	}
}
