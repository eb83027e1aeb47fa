package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

func TestCreateRuleset_WithRules(t *testing.T) {
	repo := newStubRulesetRepo()
	svc := NewRulesetService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateRulesetRequest{
		Name: "Rentrée 2025",
		Rules: []dto.RuleRequest{
			{Name: "hausse ete", RuleType: model.RuleTypeSeasonality, Priority: 10, Params: json.RawMessage(`{"months":[7,8],"adjustment_percent":10}`)},
			{Name: "marge mini", RuleType: model.RuleTypeMarginGuard, Priority: 100, Params: json.RawMessage(`{"min_margin_percent":20}`)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rentrée 2025", resp.Name)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.Rules, 2)
	assert.Equal(t, model.RuleTypeSeasonality, resp.Rules[0].RuleType)
}

func TestCreateRuleset_RejectsInvalidParams(t *testing.T) {
	repo := newStubRulesetRepo()
	svc := NewRulesetService(repo)

	_, err := svc.Create(context.Background(), dto.CreateRulesetRequest{
		Name: "Invalide",
		Rules: []dto.RuleRequest{
			{Name: "mois 13", RuleType: model.RuleTypeSeasonality, Priority: 10, Params: json.RawMessage(`{"months":[13],"adjustment_percent":5}`)},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidRuleParams)
	assert.Empty(t, repo.rulesets, "nothing persisted on validation failure")
}

func TestAddRule_ValidatesBeforePersist(t *testing.T) {
	repo := newStubRulesetRepo()
	svc := NewRulesetService(repo)
	rs := &model.Ruleset{ID: uuid.New(), Name: "Base", IsActive: true}
	repo.add(rs)

	_, err := svc.AddRule(context.Background(), rs.ID, dto.RuleRequest{
		Name:     "seuil négatif",
		RuleType: model.RuleTypeLowStock,
		Priority: 10,
		Params:   json.RawMessage(`{"threshold":-1,"adjustment_percent":5}`),
	})
	assert.ErrorIs(t, err, ErrInvalidRuleParams)
	assert.Empty(t, repo.createdRules)

	resp, err := svc.AddRule(context.Background(), rs.ID, dto.RuleRequest{
		Name:     "stock faible",
		RuleType: model.RuleTypeLowStock,
		Priority: 10,
		Params:   json.RawMessage(`{"threshold":5,"adjustment_percent":5}`),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	require.Len(t, repo.createdRules, 1)
}

func TestAddRule_RulesetNotFound(t *testing.T) {
	svc := NewRulesetService(newStubRulesetRepo())
	_, err := svc.AddRule(context.Background(), uuid.New(), dto.RuleRequest{
		Name:     "orpheline",
		RuleType: model.RuleTypeSeasonality,
		Priority: 10,
		Params:   json.RawMessage(`{"months":[7],"adjustment_percent":5}`),
	})
	assert.ErrorIs(t, err, ErrRulesetNotFound)
}

func TestUpdateRule_WrongRulesetIsNotFound(t *testing.T) {
	repo := newStubRulesetRepo()
	svc := NewRulesetService(repo)
	rs := &model.Ruleset{ID: uuid.New(), Name: "Base", IsActive: true}
	repo.add(rs)

	created, err := svc.AddRule(context.Background(), rs.ID, dto.RuleRequest{
		Name:     "stock faible",
		RuleType: model.RuleTypeLowStock,
		Priority: 10,
		Params:   json.RawMessage(`{"threshold":5,"adjustment_percent":5}`),
	})
	require.NoError(t, err)
	ruleID := uuid.MustParse(created.ID)

	_, err = svc.UpdateRule(context.Background(), uuid.New(), ruleID, dto.RuleRequest{
		Name:     "renommée",
		RuleType: model.RuleTypeLowStock,
		Priority: 20,
		Params:   json.RawMessage(`{"threshold":3,"adjustment_percent":8}`),
	})
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestDeactivateRule_SoftDeletes(t *testing.T) {
	repo := newStubRulesetRepo()
	svc := NewRulesetService(repo)
	rs := &model.Ruleset{ID: uuid.New(), Name: "Base", IsActive: true}
	repo.add(rs)

	created, err := svc.AddRule(context.Background(), rs.ID, dto.RuleRequest{
		Name:     "éphémère",
		RuleType: model.RuleTypeLowRotation,
		Priority: 10,
		Params:   json.RawMessage(`{"days_without_sale":60,"discount_percent":15}`),
	})
	require.NoError(t, err)
	ruleID := uuid.MustParse(created.ID)

	require.NoError(t, svc.DeactivateRule(context.Background(), rs.ID, ruleID))
	rule, err := repo.FindRuleByID(context.Background(), ruleID)
	require.NoError(t, err)
	assert.False(t, rule.IsActive, "rule stays in place, only deactivated")
}
