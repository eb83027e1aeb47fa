package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// RulesetRepository is the data access contract for rulesets and their rules.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type RulesetRepository interface {
	Create(ctx context.Context, rs *model.Ruleset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ruleset, error)
	List(ctx context.Context) ([]model.Ruleset, int64, error)
	ListActive(ctx context.Context) ([]model.Ruleset, error)
	Update(ctx context.Context, rs *model.Ruleset) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ListActiveRules returns a ruleset's active rules, guards included,
	// ordered ascending by priority.
	ListActiveRules(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error)
	CreateRule(ctx context.Context, r *model.Rule) error
	FindRuleByID(ctx context.Context, id uuid.UUID) (*model.Rule, error)
	UpdateRule(ctx context.Context, r *model.Rule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error
}

type rulesetRepo struct{ db *gorm.DB }

func NewRulesetRepository(db *gorm.DB) RulesetRepository { return &rulesetRepo{db: db} }

func (r *rulesetRepo) Create(ctx context.Context, rs *model.Ruleset) error {
	return r.db.WithContext(ctx).Create(rs).Error
}

func (r *rulesetRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ruleset, error) {
	var rs model.Ruleset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("priority ASC") }).
		First(&rs, id).Error
	return &rs, err
}

func (r *rulesetRepo) List(ctx context.Context) ([]model.Ruleset, int64, error) {
	var rulesets []model.Ruleset
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Ruleset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("priority ASC") }).
		Order("name ASC").
		Find(&rulesets).Error
	return rulesets, total, err
}

func (r *rulesetRepo) ListActive(ctx context.Context) ([]model.Ruleset, error) {
	var rulesets []model.Ruleset
	err := r.db.WithContext(ctx).Where("is_active = true").Order("name ASC").Find(&rulesets).Error
	return rulesets, err
}

func (r *rulesetRepo) Update(ctx context.Context, rs *model.Ruleset) error {
	return r.db.WithContext(ctx).Save(rs).Error
}

func (r *rulesetRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Ruleset{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *rulesetRepo) ListActiveRules(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	var rules []model.Rule
	err := r.db.WithContext(ctx).
		Where("ruleset_id = ? AND is_active = true", rulesetID).
		Order("priority ASC").
		Find(&rules).Error
	return rules, err
}

func (r *rulesetRepo) CreateRule(ctx context.Context, rule *model.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *rulesetRepo) FindRuleByID(ctx context.Context, id uuid.UUID) (*model.Rule, error) {
	var rule model.Rule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	return &rule, err
}

func (r *rulesetRepo) UpdateRule(ctx context.Context, rule *model.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *rulesetRepo) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Rule{}).Where("id = ?", id).Update("is_active", false).Error
}
