package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
)

// In-memory stubs standing in for the GORM repositories. DB() returns nil so
// runTx executes the callback without a transaction.

type stubRulesetRepo struct {
	rulesets map[uuid.UUID]*model.Ruleset
	rules    map[uuid.UUID]*model.Rule

	createdRules []model.Rule
}

func newStubRulesetRepo() *stubRulesetRepo {
	return &stubRulesetRepo{
		rulesets: make(map[uuid.UUID]*model.Ruleset),
		rules:    make(map[uuid.UUID]*model.Rule),
	}
}

func (s *stubRulesetRepo) add(rs *model.Ruleset) {
	s.rulesets[rs.ID] = rs
	for i := range rs.Rules {
		s.rules[rs.Rules[i].ID] = &rs.Rules[i]
	}
}

func (s *stubRulesetRepo) Create(ctx context.Context, rs *model.Ruleset) error {
	if rs.ID == uuid.Nil {
		rs.ID = uuid.New()
	}
	for i := range rs.Rules {
		if rs.Rules[i].ID == uuid.Nil {
			rs.Rules[i].ID = uuid.New()
		}
		rs.Rules[i].RulesetID = rs.ID
	}
	s.add(rs)
	return nil
}

func (s *stubRulesetRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ruleset, error) {
	rs, ok := s.rulesets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rs, nil
}

func (s *stubRulesetRepo) List(ctx context.Context) ([]model.Ruleset, int64, error) {
	out := make([]model.Ruleset, 0, len(s.rulesets))
	for _, rs := range s.rulesets {
		out = append(out, *rs)
	}
	return out, int64(len(out)), nil
}

func (s *stubRulesetRepo) ListActive(ctx context.Context) ([]model.Ruleset, error) {
	var out []model.Ruleset
	for _, rs := range s.rulesets {
		if rs.IsActive {
			out = append(out, *rs)
		}
	}
	return out, nil
}

func (s *stubRulesetRepo) Update(ctx context.Context, rs *model.Ruleset) error {
	s.rulesets[rs.ID] = rs
	return nil
}

func (s *stubRulesetRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	if rs, ok := s.rulesets[id]; ok {
		rs.IsActive = false
	}
	return nil
}

func (s *stubRulesetRepo) ListActiveRules(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	rs, ok := s.rulesets[rulesetID]
	if !ok {
		return nil, nil
	}
	var out []model.Rule
	for _, r := range rs.Rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRulesetRepo) CreateRule(ctx context.Context, r *model.Rule) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.rules[r.ID] = r
	s.createdRules = append(s.createdRules, *r)
	return nil
}

func (s *stubRulesetRepo) FindRuleByID(ctx context.Context, id uuid.UUID) (*model.Rule, error) {
	r, ok := s.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (s *stubRulesetRepo) UpdateRule(ctx context.Context, r *model.Rule) error {
	s.rules[r.ID] = r
	return nil
}

func (s *stubRulesetRepo) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	if r, ok := s.rules[id]; ok {
		r.IsActive = false
	}
	return nil
}

type stubProductRepo struct {
	products  map[uuid.UUID]*model.Product
	costs     map[uuid.UUID]decimal.Decimal
	lastSales map[uuid.UUID]time.Time

	priceUpdates map[uuid.UUID]decimal.Decimal
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:     make(map[uuid.UUID]*model.Product),
		costs:        make(map[uuid.UUID]decimal.Decimal),
		lastSales:    make(map[uuid.UUID]time.Time),
		priceUpdates: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (s *stubProductRepo) add(p *model.Product) { s.products[p.ID] = p }

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubProductRepo) ListActive(ctx context.Context, category *string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if category != nil && *category != "" && p.Category != *category {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductRepo) LowestSupplierCosts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, id := range ids {
		if c, ok := s.costs[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *stubProductRepo) LastSaleDates(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]time.Time, error) {
	out := make(map[uuid.UUID]time.Time)
	for _, id := range ids {
		if t, ok := s.lastSales[id]; ok && !t.Before(since) {
			out[id] = t
		}
	}
	return out, nil
}

func (s *stubProductRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubProductRepo) UpdatePriceTx(tx *gorm.DB, id uuid.UUID, priceHT decimal.Decimal) error {
	s.priceUpdates[id] = priceHT
	if p, ok := s.products[id]; ok {
		p.PriceHT = priceHT
	}
	return nil
}

func (s *stubProductRepo) DB() *gorm.DB { return nil }

type stubSimulationRepo struct {
	sims map[uuid.UUID]*model.Simulation

	created      *model.Simulation
	createdItems []model.SimulationItem
}

func newStubSimulationRepo() *stubSimulationRepo {
	return &stubSimulationRepo{sims: make(map[uuid.UUID]*model.Simulation)}
}

func (s *stubSimulationRepo) add(sim *model.Simulation) { s.sims[sim.ID] = sim }

func (s *stubSimulationRepo) Create(ctx context.Context, sim *model.Simulation, items []model.SimulationItem) error {
	if sim.ID == uuid.Nil {
		sim.ID = uuid.New()
	}
	sim.CreatedAt = time.Now()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].SimulationID = sim.ID
	}
	sim.Items = items
	s.sims[sim.ID] = sim
	s.created = sim
	s.createdItems = items
	return nil
}

func (s *stubSimulationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	sim, ok := s.sims[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sim, nil
}

func (s *stubSimulationRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	return s.FindByID(ctx, id)
}

func (s *stubSimulationRepo) List(ctx context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error) {
	var out []model.Simulation
	for _, sim := range s.sims {
		if filter.Status != "" && sim.Status != filter.Status {
			continue
		}
		out = append(out, *sim)
	}
	return out, int64(len(out)), nil
}

func (s *stubSimulationRepo) MarkAppliedTx(tx *gorm.DB, id uuid.UUID, actor string, at time.Time) (bool, error) {
	sim, ok := s.sims[id]
	if !ok || sim.Status != model.SimulationCompleted {
		return false, nil
	}
	sim.Status = model.SimulationApplied
	sim.AppliedBy = &actor
	sim.AppliedAt = &at
	return true, nil
}

func (s *stubSimulationRepo) MarkRolledBackTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	sim, ok := s.sims[id]
	if !ok || sim.Status != model.SimulationApplied {
		return false, nil
	}
	sim.Status = model.SimulationRolledBack
	return true, nil
}

func (s *stubSimulationRepo) DB() *gorm.DB { return nil }

type stubPriceLogRepo struct {
	entries []model.PriceChangeLog
}

func (s *stubPriceLogRepo) CreateTx(tx *gorm.DB, entry *model.PriceChangeLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubPriceLogRepo) ListOriginalsBySimulationTx(tx *gorm.DB, simulationID uuid.UUID) ([]model.PriceChangeLog, error) {
	var out []model.PriceChangeLog
	for _, e := range s.entries {
		if e.SimulationID == simulationID && !e.IsRollback {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubPriceLogRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error) {
	var out []model.PriceChangeLog
	for _, e := range s.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubPriceLogRepo) CountBySimulation(ctx context.Context, simulationID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if e.SimulationID == simulationID {
			n++
		}
	}
	return n, nil
}
