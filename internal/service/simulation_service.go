package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
	"github.com/Neo52000/ma-papeterie-sub003/internal/pricing"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// SimulationService runs dry-run repricings and serves their results. A
// simulation never mutates product prices; that is Apply's job.
type SimulationService interface {
	Simulate(ctx context.Context, req dto.RunSimulationRequest, actor string) (*dto.SimulationResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SimulationResponse, error)
	List(ctx context.Context, filter dto.SimulationFilter) (*dto.SimulationListResponse, error)
	// ReportPDF renders the review report and returns the file path.
	ReportPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type simulationService struct {
	rulesets repository.RulesetRepository
	products repository.ProductRepository
	sims     repository.SimulationRepository
	metrics  *infra.Metrics

	// salesLookback bounds the "days since last sale" query; a product with no
	// sale inside the window counts as recently sold (never auto-discounted).
	salesLookback time.Duration
	pdfPath       string
	now           func() time.Time
}

func NewSimulationService(
	rulesets repository.RulesetRepository,
	products repository.ProductRepository,
	sims repository.SimulationRepository,
	metrics *infra.Metrics,
	salesLookbackDays int,
	pdfPath string,
) SimulationService {
	if salesLookbackDays < 1 {
		salesLookbackDays = 365
	}
	return &simulationService{
		rulesets:      rulesets,
		products:      products,
		sims:          sims,
		metrics:       metrics,
		salesLookback: time.Duration(salesLookbackDays) * 24 * time.Hour,
		pdfPath:       pdfPath,
		now:           time.Now,
	}
}

// Simulate evaluates the ruleset over the active product population and
// persists one Simulation plus one SimulationItem per changed product.
// Each call creates a new, independent simulation; concurrent calls share no
// mutable state.
func (s *simulationService) Simulate(ctx context.Context, req dto.RunSimulationRequest, actor string) (*dto.SimulationResponse, error) {
	started := s.now()

	rulesetID, err := uuid.Parse(req.RulesetID)
	if err != nil {
		return nil, fmt.Errorf("ruleset_id invalide: %w", err)
	}
	if _, err := s.rulesets.FindByID(ctx, rulesetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRulesetNotFound
		}
		return nil, err
	}

	stored, err := s.rulesets.ListActiveRules(ctx, rulesetID)
	if err != nil {
		return nil, err
	}
	proposers, guards, err := pricing.ParseRules(stored)
	if err != nil {
		return nil, err
	}
	if len(proposers) == 0 {
		return nil, ErrNoActiveRules
	}

	products, err := s.products.ListActive(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyPopulation
	}

	// External pricing context, loaded in bulk. A product missing from either
	// map degrades gracefully (unknown cost / treated as recently sold);
	// missing context is never an error.
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	costs, err := s.products.LowestSupplierCosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	lastSales, err := s.products.LastSaleDates(ctx, ids, now.Add(-s.salesLookback))
	if err != nil {
		return nil, err
	}

	items := make([]model.SimulationItem, 0)
	names := make(map[uuid.UUID]string, len(products))
	sumPct := decimal.Zero

	for _, p := range products {
		snap := pricing.Snapshot{
			ProductID:     p.ID,
			Category:      p.Category,
			PriceHT:       p.PriceHT,
			StockQuantity: p.StockQuantity,
		}
		if c, ok := costs[p.ID]; ok {
			cost := c
			snap.Cost = &cost
		}
		if last, ok := lastSales[p.ID]; ok {
			snap.DaysSinceLastSale = int(now.Sub(last).Hours() / 24)
		}

		prop := pricing.Evaluate(snap, proposers, now)
		if prop == nil {
			continue
		}
		guarded := pricing.ApplyGuards(prop.NewPrice, snap.Cost, guards)

		// Round to the cent, then keep the item only if the price actually
		// moved (strict equality; any nonzero change qualifies).
		newPrice := guarded.Price.Round(2)
		if newPrice.Equal(p.PriceHT) {
			continue
		}

		pct := pricing.ChangePercent(p.PriceHT, newPrice).Round(2)
		items = append(items, model.SimulationItem{
			ProductID:      p.ID,
			RuleID:         prop.RuleID,
			RuleType:       prop.RuleType,
			OldPriceHT:     p.PriceHT,
			NewPriceHT:     newPrice,
			PriceChangePct: pct,
			OldMarginPct:   roundPct(pricing.MarginPercent(p.PriceHT, snap.Cost)),
			NewMarginPct:   roundPct(pricing.MarginPercent(newPrice, snap.Cost)),
			Reason:         prop.Reason + guarded.Note,
			BlockedByGuard: guarded.Blocked,
		})
		names[p.ID] = p.Name
		sumPct = sumPct.Add(pct)
		if guarded.Blocked {
			s.metrics.RecordGuardBlock()
		}
	}

	avg := decimal.Zero
	if len(items) > 0 {
		avg = sumPct.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
	}

	sim := &model.Simulation{
		RulesetID:     rulesetID,
		Category:      req.Category,
		Status:        model.SimulationCompleted,
		ProductCount:  len(products),
		AffectedCount: len(items),
		AvgChangePct:  avg,
		CreatedBy:     actor,
	}
	if err := s.sims.Create(ctx, sim, items); err != nil {
		return nil, err
	}

	s.metrics.RecordSimulation(model.SimulationCompleted, s.now().Sub(started))
	log.Info().
		Str("simulation_id", sim.ID.String()).
		Str("ruleset_id", rulesetID.String()).
		Int("product_count", len(products)).
		Int("affected_count", len(items)).
		Str("avg_change_pct", avg.String()).
		Str("created_by", actor).
		Msg("simulation completed")

	resp := simulationToResponse(sim)
	resp.Items = itemsToResponses(items, names)
	return resp, nil
}

func (s *simulationService) Get(ctx context.Context, id uuid.UUID) (*dto.SimulationResponse, error) {
	sim, err := s.sims.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSimulationNotFound
		}
		return nil, err
	}
	resp := simulationToResponse(sim)
	names := make(map[uuid.UUID]string, len(sim.Items))
	for _, it := range sim.Items {
		if it.Product != nil {
			names[it.ProductID] = it.Product.Name
		}
	}
	resp.Items = itemsToResponses(sim.Items, names)
	return resp, nil
}

func (s *simulationService) List(ctx context.Context, filter dto.SimulationFilter) (*dto.SimulationListResponse, error) {
	sims, total, err := s.sims.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SimulationResponse, 0, len(sims))
	for i := range sims {
		data = append(data, *simulationToResponse(&sims[i]))
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return &dto.SimulationListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ReportPDF renders the review report for an existing simulation, whatever
// its status, and returns the generated file path.
func (s *simulationService) ReportPDF(ctx context.Context, id uuid.UUID) (string, error) {
	sim, err := s.sims.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSimulationNotFound
		}
		return "", err
	}
	return infra.GenerateSimulationPDF(sim, s.pdfPath)
}

// ── Mapping helpers ──────────────────────────────────────────────────────────

func roundPct(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	r := v.Round(2)
	return &r
}

func simulationToResponse(sim *model.Simulation) *dto.SimulationResponse {
	resp := &dto.SimulationResponse{
		ID:            sim.ID.String(),
		RulesetID:     sim.RulesetID.String(),
		Category:      sim.Category,
		Status:        sim.Status,
		ProductCount:  sim.ProductCount,
		AffectedCount: sim.AffectedCount,
		AvgChangePct:  sim.AvgChangePct,
		CreatedBy:     sim.CreatedBy,
		CreatedAt:     sim.CreatedAt.UTC().Format(time.RFC3339),
	}
	resp.AppliedBy = sim.AppliedBy
	if sim.AppliedAt != nil {
		at := sim.AppliedAt.UTC().Format(time.RFC3339)
		resp.AppliedAt = &at
	}
	return resp
}

func itemsToResponses(items []model.SimulationItem, names map[uuid.UUID]string) []dto.SimulationItemResponse {
	out := make([]dto.SimulationItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SimulationItemResponse{
			ID:             it.ID.String(),
			ProductID:      it.ProductID.String(),
			ProductName:    names[it.ProductID],
			RuleID:         it.RuleID.String(),
			RuleType:       it.RuleType,
			OldPriceHT:     it.OldPriceHT,
			NewPriceHT:     it.NewPriceHT,
			PriceChangePct: it.PriceChangePct,
			OldMarginPct:   it.OldMarginPct,
			NewMarginPct:   it.NewMarginPct,
			Reason:         it.Reason,
			BlockedByGuard: it.BlockedByGuard,
		})
	}
	return out
}
