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

// ExplosionService BOM递归展开与成本核算
type ExplosionService struct {
	items ItemReader
	bom   BOMReader
	price *PriceResolver
}

func NewExplosionService(items ItemReader, bom BOMReader, price *PriceResolver) *ExplosionService {
	return &ExplosionService{items: items, bom: bom, price: price}
}

// Explode 从指定父品目出发递归展开BOM，输出叶子物料需求清单与成本汇总。
//
// 子装配作为穿透节点展开，不单独产生需求行；同一品目出现在多条路径上时
// 各路径分别产生需求行。月份为零值时取当前自然月，maxDepth 非正时取
// DefaultMaxDepth。根品目不存在或没有BOM定义返回 ErrNotFound。
func (s *ExplosionService) Explode(ctx context.Context, parentItemID int64, quantity decimal.Decimal, priceMonth time.Time, maxDepth int) (*entity.ExplosionResult, error) {
	if parentItemID <= 0 {
		return nil, fmt.Errorf("%w: parent item id %d", ErrInvalidArgument, parentItemID)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: production quantity %s must be positive", ErrInvalidArgument, quantity)
	}
	if priceMonth.IsZero() {
		priceMonth = entity.CurrentMonth()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	if _, err := s.items.FindByID(ctx, parentItemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %d", ErrNotFound, parentItemID)
		}
		return nil, fmt.Errorf("查询品目失败: %w", err)
	}

	rootEdges, err := s.bom.GetChildren(ctx, parentItemID)
	if err != nil {
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}
	if len(rootEdges) == 0 {
		return nil, fmt.Errorf("%w: item %d has no BOM", ErrNotFound, parentItemID)
	}

	w := &explodeWalker{
		svc:        s,
		month:      priceMonth,
		maxDepth:   maxDepth,
		path:       map[int64]bool{parentItemID: true},
		priceCache: make(map[int64]decimal.Decimal),
	}
	if err := w.walk(ctx, rootEdges, 0, quantity); err != nil {
		return nil, err
	}

	totals := entity.ExplosionTotals{
		MaterialCost:    decimal.Zero,
		ScrapRevenue:    decimal.Zero,
		NetCost:         decimal.Zero,
		TotalItems:      len(w.requirements),
		CyclesTruncated: w.cyclesTruncated,
		CountsByInvType: make(map[string]int),
	}
	for _, req := range w.requirements {
		totals.MaterialCost = totals.MaterialCost.Add(req.MaterialCost)
		totals.ScrapRevenue = totals.ScrapRevenue.Add(req.ScrapRevenue)
		totals.NetCost = totals.NetCost.Add(req.NetCost)
		totals.CountsByInvType[req.InventoryType]++
		if req.Level > totals.MaxLevel {
			totals.MaxLevel = req.Level
		}
	}

	return &entity.ExplosionResult{
		ParentItemID:       parentItemID,
		ProductionQuantity: quantity,
		PriceMonth:         entity.FormatMonth(priceMonth),
		Requirements:       w.requirements,
		Totals:             totals,
	}, nil
}

// explodeWalker 单次展开的遍历状态。path 记录当前递归路径用于断环，
// priceCache 按品目缓存已解析的单价。
type explodeWalker struct {
	svc             *ExplosionService
	month           time.Time
	maxDepth        int
	path            map[int64]bool
	priceCache      map[int64]decimal.Decimal
	requirements    []entity.MaterialRequirement
	cyclesTruncated int
}

// walk 展开一层。edges 是当前父级的子级边，depth 是父级所在层（根为0），
// multiplier 是父级的累计需求数量。
func (w *explodeWalker) walk(ctx context.Context, edges []entity.BOMEdge, depth int, multiplier decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	childIDs := make([]int64, 0, len(edges))
	for _, e := range edges {
		childIDs = append(childIDs, e.ChildItemID)
	}
	items, err := w.svc.items.GetItems(ctx, childIDs)
	if err != nil {
		return fmt.Errorf("批量查询品目失败: %w", err)
	}

	// 同层按品目编码排序，保证输出顺序稳定
	sort.SliceStable(edges, func(i, j int) bool {
		return items[edges[i].ChildItemID].ItemCode < items[edges[j].ChildItemID].ItemCode
	})

	childDepth := depth + 1
	for _, edge := range edges {
		item, ok := items[edge.ChildItemID]
		if !ok {
			// 子品目已停用，跳过该边
			continue
		}
		if edge.QuantityRequired.IsNegative() {
			return fmt.Errorf("%w: bom %d quantity_required %s is negative", ErrInvalidArgument, edge.BOMID, edge.QuantityRequired)
		}

		if w.path[edge.ChildItemID] {
			w.cyclesTruncated++
			continue
		}

		effective := multiplier.Mul(edge.QuantityRequired)

		childEdges, err := w.svc.bom.GetChildren(ctx, edge.ChildItemID)
		if err != nil {
			return fmt.Errorf("查询BOM失败: %w", err)
		}

		if len(childEdges) > 0 {
			// 子装配：穿透展开，超出层数上限的分支整体省略
			if childDepth >= w.maxDepth {
				continue
			}
			w.path[edge.ChildItemID] = true
			err := w.walk(ctx, childEdges, childDepth, effective)
			delete(w.path, edge.ChildItemID)
			if err != nil {
				return err
			}
			continue
		}

		price, err := w.resolvePrice(ctx, edge.ChildItemID)
		if err != nil {
			return err
		}
		cost, err := ComputeCost(effective, price, edge.ScrapRate)
		if err != nil {
			return fmt.Errorf("bom %d: %w", edge.BOMID, err)
		}

		w.requirements = append(w.requirements, entity.MaterialRequirement{
			ItemID:           item.ItemID,
			ItemCode:         item.ItemCode,
			ItemName:         item.ItemName,
			Spec:             item.Spec,
			Unit:             item.Unit,
			InventoryType:    item.InventoryType,
			RequiredQuantity: effective,
			UnitPrice:        price,
			Level:            childDepth,
			CostBreakdown:    cost,
		})
	}
	return nil
}

func (w *explodeWalker) resolvePrice(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	if p, ok := w.priceCache[itemID]; ok {
		return p, nil
	}
	p, err := w.svc.price.Resolve(ctx, itemID, w.month)
	if err != nil {
		return decimal.Zero, err
	}
	w.priceCache[itemID] = p
	return p, nil
}
