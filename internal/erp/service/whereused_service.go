package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// WhereUsedService 反查：某子品目被哪些父品目直接使用
type WhereUsedService struct {
	items ItemReader
	bom   BOMReader
	price *PriceResolver
}

func NewWhereUsedService(items ItemReader, bom BOMReader, price *PriceResolver) *WhereUsedService {
	return &WhereUsedService{items: items, bom: bom, price: price}
}

// WhereUsed 单层反查。只看直接父级，不做多层传递。includeCosts 为真时按
// 指定月份解析子品目单价并给出每条用量的成本拆分。子品目不存在返回
// ErrNotFound；没有任何父级使用时返回空列表，不算错误。
func (s *WhereUsedService) WhereUsed(ctx context.Context, childItemID int64, includeCosts bool, priceMonth time.Time) (*entity.WhereUsedResult, error) {
	if childItemID <= 0 {
		return nil, fmt.Errorf("%w: child item id %d", ErrInvalidArgument, childItemID)
	}
	if priceMonth.IsZero() {
		priceMonth = entity.CurrentMonth()
	}

	child, err := s.items.FindByID(ctx, childItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %d", ErrNotFound, childItemID)
		}
		return nil, fmt.Errorf("查询品目失败: %w", err)
	}

	edges, err := s.bom.GetParents(ctx, childItemID)
	if err != nil {
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}

	result := &entity.WhereUsedResult{
		ChildItem: itemSummary(*child),
		Parents:   []entity.WhereUsedParent{},
	}
	if len(edges) == 0 {
		return result, nil
	}

	parentIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		parentIDs = append(parentIDs, e.ParentItemID)
	}
	parents, err := s.items.GetItems(ctx, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("批量查询品目失败: %w", err)
	}

	// 子品目单价只解析一次，所有用量行共用
	var unitPrice decimal.Decimal
	if includeCosts {
		unitPrice, err = s.price.Resolve(ctx, childItemID, priceMonth)
		if err != nil {
			return nil, err
		}
	}

	grouped := make(map[int64]*entity.WhereUsedParent)
	var order []int64
	totalCost := entity.ZeroCostBreakdown()
	for _, edge := range edges {
		parent, ok := parents[edge.ParentItemID]
		if !ok {
			// 父品目已停用
			continue
		}
		g, exists := grouped[edge.ParentItemID]
		if !exists {
			g = &entity.WhereUsedParent{
				ParentItem:    itemSummary(parent),
				TotalQuantity: decimal.Zero,
			}
			grouped[edge.ParentItemID] = g
			order = append(order, edge.ParentItemID)
		}

		usage := entity.WhereUsedUsage{
			BOMID:            edge.BOMID,
			QuantityRequired: edge.QuantityRequired,
			Unit:             child.Unit,
			ScrapRate:        edge.ScrapRate,
			Notes:            edge.Notes,
		}
		if includeCosts {
			cost, err := ComputeCost(edge.QuantityRequired, unitPrice, edge.ScrapRate)
			if err != nil {
				return nil, fmt.Errorf("bom %d: %w", edge.BOMID, err)
			}
			usage.Cost = &cost
			totalCost = totalCost.Add(cost)
		}
		g.UsageDetails = append(g.UsageDetails, usage)
		g.TotalQuantity = g.TotalQuantity.Add(edge.QuantityRequired)
		result.Summary.TotalUsageCount++
	}

	sort.Slice(order, func(i, j int) bool {
		return grouped[order[i]].ParentItem.ItemCode < grouped[order[j]].ParentItem.ItemCode
	})
	for _, pid := range order {
		result.Parents = append(result.Parents, *grouped[pid])
	}

	result.Summary.UsedInCount = len(result.Parents)
	if includeCosts {
		result.Summary.TotalCost = &totalCost
	}
	return result, nil
}

func itemSummary(item entity.Item) entity.ItemSummary {
	return entity.ItemSummary{
		ItemID:        item.ItemID,
		ItemCode:      item.ItemCode,
		ItemName:      item.ItemName,
		Spec:          item.Spec,
		Unit:          item.Unit,
		InventoryType: item.InventoryType,
	}
}
