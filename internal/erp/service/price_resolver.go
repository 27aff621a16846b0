package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// PriceResolver 单价解析。优先取指定月份的月度单价，没有则回退到品目基准价。
type PriceResolver struct {
	items  ItemReader
	prices PriceReader
}

func NewPriceResolver(items ItemReader, prices PriceReader) *PriceResolver {
	return &PriceResolver{items: items, prices: prices}
}

// Resolve 解析单个品目在指定月份的单价。品目不存在返回 ErrNotFound。
func (s *PriceResolver) Resolve(ctx context.Context, itemID int64, month time.Time) (decimal.Decimal, error) {
	if month.IsZero() {
		month = entity.CurrentMonth()
	}

	entry, err := s.prices.FindMonthly(ctx, itemID, month)
	if err == nil {
		return entry.UnitPrice, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("查询月度单价失败: %w", err)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
		}
		return decimal.Zero, fmt.Errorf("查询品目失败: %w", err)
	}
	return item.BasePrice, nil
}

// ResolveBatch 批量解析已加载品目的单价，月度价一次查询，缺失的回退基准价。
func (s *PriceResolver) ResolveBatch(ctx context.Context, items map[int64]entity.Item, month time.Time) (map[int64]decimal.Decimal, error) {
	if month.IsZero() {
		month = entity.CurrentMonth()
	}

	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}

	monthly, err := s.prices.GetMonthlyPrices(ctx, ids, month)
	if err != nil {
		return nil, fmt.Errorf("批量查询月度单价失败: %w", err)
	}

	result := make(map[int64]decimal.Decimal, len(items))
	for id, item := range items {
		if p, ok := monthly[id]; ok {
			result[id] = p
		} else {
			result[id] = item.BasePrice
		}
	}
	return result, nil
}
