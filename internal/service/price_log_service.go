package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/model"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
)

// PriceLogService reads a product's price ledger.
type PriceLogService interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.PriceLogListResponse, error)
}

type priceLogService struct {
	products repository.ProductRepository
	logs     repository.PriceLogRepository
}

func NewPriceLogService(products repository.ProductRepository, logs repository.PriceLogRepository) PriceLogService {
	return &priceLogService{products: products, logs: logs}
}

func (s *priceLogService) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.PriceLogListResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, total, err := s.logs.ListByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceLogItem, 0, len(rows))
	for i := range rows {
		items = append(items, priceLogToItem(&rows[i]))
	}
	return &dto.PriceLogListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func priceLogToItem(l *model.PriceChangeLog) dto.PriceLogItem {
	item := dto.PriceLogItem{
		ID:             l.ID.String(),
		ProductID:      l.ProductID.String(),
		SimulationID:   l.SimulationID.String(),
		RuleType:       l.RuleType,
		OldPriceHT:     l.OldPriceHT,
		NewPriceHT:     l.NewPriceHT,
		PriceChangePct: l.PriceChangePct,
		OldMarginPct:   l.OldMarginPct,
		NewMarginPct:   l.NewMarginPct,
		Reason:         l.Reason,
		AppliedBy:      l.AppliedBy,
		AppliedAt:      l.AppliedAt.UTC().Format(time.RFC3339),
		IsRollback:     l.IsRollback,
	}
	if l.RollbackOf != nil {
		ref := l.RollbackOf.String()
		item.RollbackOf = &ref
	}
	return item
}
