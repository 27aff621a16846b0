package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
)

// CoilCostService 卷料用量视图。列出子品目为卷料的BOM边并附带成本拆分。
type CoilCostService struct {
	items  ItemReader
	bom    BOMReader
	prices PriceReader
}

func NewCoilCostService(items ItemReader, bom BOMReader, prices PriceReader) *CoilCostService {
	return &CoilCostService{items: items, bom: bom, prices: prices}
}

// ListCoilMaterials 分页列出卷料用量行。parentItemID 非空时只看该父品目。
// 单价按指定月份解析、缺失回退基准价，成本汇总只覆盖当前页。
func (s *CoilCostService) ListCoilMaterials(ctx context.Context, parentItemID *int64, priceMonth time.Time, limit, offset int) (*entity.CoilMaterialList, error) {
	if parentItemID != nil && *parentItemID <= 0 {
		return nil, fmt.Errorf("%w: parent item id %d", ErrInvalidArgument, *parentItemID)
	}
	if priceMonth.IsZero() {
		priceMonth = entity.CurrentMonth()
	}

	edges, total, err := s.bom.ListEdgesByChildInventoryType(ctx, parentItemID, entity.InventoryTypeCoil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("查询卷料BOM失败: %w", err)
	}

	idSet := make(map[int64]bool, len(edges)*2)
	for _, e := range edges {
		idSet[e.ParentItemID] = true
		idSet[e.ChildItemID] = true
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	items, err := s.items.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("批量查询品目失败: %w", err)
	}
	monthly, err := s.prices.GetMonthlyPrices(ctx, ids, priceMonth)
	if err != nil {
		return nil, fmt.Errorf("批量查询月度单价失败: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	list := &entity.CoilMaterialList{
		Rows:       []entity.CoilMaterialRow{},
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		PriceMonth: entity.FormatMonth(priceMonth),
		Summary:    entity.ZeroCostBreakdown(),
	}

	for _, edge := range edges {
		child, ok := items[edge.ChildItemID]
		if !ok {
			continue
		}
		price, ok := monthly[edge.ChildItemID]
		if !ok {
			price = child.BasePrice
		}
		cost, err := ComputeCost(edge.QuantityRequired, price, edge.ScrapRate)
		if err != nil {
			return nil, fmt.Errorf("bom %d: %w", edge.BOMID, err)
		}

		list.Rows = append(list.Rows, entity.CoilMaterialRow{
			BOMID:            edge.BOMID,
			ParentItem:       itemSummary(items[edge.ParentItemID]),
			ChildItem:        itemSummary(child),
			QuantityRequired: edge.QuantityRequired,
			ScrapRate:        edge.ScrapRate,
			UnitPrice:        price,
			CostBreakdown:    cost,
		})
		list.Summary = list.Summary.Add(cost)
	}
	return list, nil
}
