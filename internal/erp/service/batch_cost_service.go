package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MaxBatchItems 单次批量成本请求的品目数上限
const MaxBatchItems = 500

// batchWorkers 批量成本并发计算的协程数
const batchWorkers = 8

// BatchCostService 批量成本核算。整棵闭包的BOM边分轮次批量拉取，
// 单价一次批量解析，避免逐品目的N+1查询。
type BatchCostService struct {
	items  ItemReader
	bom    BOMReader
	prices PriceReader
}

func NewBatchCostService(items ItemReader, bom BOMReader, prices PriceReader) *BatchCostService {
	return &BatchCostService{items: items, bom: bom, prices: prices}
}

// BatchCost 计算一组品目各自生产1个单位的完整展开成本。
//
// 结果覆盖每个请求的品目ID：有BOM的给出展开后的成本拆分，没有BOM的
// 标记 HasBOM=false 且成本为零。单个品目缺月度价回退基准价，不会让
// 整批失败。重复ID去重。
func (s *BatchCostService) BatchCost(ctx context.Context, itemIDs []int64, priceMonth time.Time) (*entity.BatchCostResult, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: item ids is empty", ErrInvalidArgument)
	}
	if priceMonth.IsZero() {
		priceMonth = entity.CurrentMonth()
	}

	seen := make(map[int64]bool, len(itemIDs))
	roots := make([]int64, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: item id %d", ErrInvalidArgument, id)
		}
		if !seen[id] {
			seen[id] = true
			roots = append(roots, id)
		}
	}
	if len(roots) > MaxBatchItems {
		return nil, fmt.Errorf("%w: %d items exceeds limit %d", ErrInvalidArgument, len(roots), MaxBatchItems)
	}

	edgesByParent, err := s.fetchClosure(ctx, roots)
	if err != nil {
		return nil, err
	}

	// 闭包内全部品目一次取齐，单价批量解析
	idSet := make(map[int64]bool)
	for pid, edges := range edgesByParent {
		idSet[pid] = true
		for _, e := range edges {
			idSet[e.ChildItemID] = true
		}
	}
	for _, id := range roots {
		idSet[id] = true
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
	priceOf := func(itemID int64) decimal.Decimal {
		if p, ok := monthly[itemID]; ok {
			return p
		}
		if item, ok := items[itemID]; ok {
			return item.BasePrice
		}
		return decimal.Zero
	}

	calc := &batchCalculator{
		edgesByParent: edgesByParent,
		items:         items,
		priceOf:       priceOf,
		maxDepth:      DefaultMaxDepth,
		memo:          make(map[batchMemoKey]entity.CostBreakdown),
	}

	var mu sync.Mutex
	results := make(map[int64]entity.BatchCostEntry, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for _, id := range roots {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry := entity.BatchCostEntry{CostBreakdown: entity.ZeroCostBreakdown()}
			if len(edgesByParent[id]) > 0 {
				cost, _, err := calc.unitCost(id, 0, map[int64]bool{id: true})
				if err != nil {
					return err
				}
				entry.HasBOM = true
				entry.CostBreakdown = cost
			}
			mu.Lock()
			results[id] = entry
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta := entity.BatchCostMetadata{
		TotalItems: len(roots),
		PriceMonth: entity.FormatMonth(priceMonth),
	}
	for _, entry := range results {
		if entry.HasBOM {
			meta.ItemsWithBOM++
		} else {
			meta.ItemsWithoutBOM++
		}
	}

	return &entity.BatchCostResult{Results: results, Metadata: meta}, nil
}

// fetchClosure 从请求的根品目出发，按层批量拉取BOM边直到边界收敛。
// 每轮一次IN查询，轮次数等于闭包深度，且不超过层数上限之外一层——
// 第 maxDepth 层品目的边仍需拉取，用于区分超限的子装配和可计价的叶子。
// visited 保证含环数据也会终止。
func (s *BatchCostService) fetchClosure(ctx context.Context, roots []int64) (map[int64][]entity.BOMEdge, error) {
	edgesByParent := make(map[int64][]entity.BOMEdge)
	visited := make(map[int64]bool, len(roots))

	frontier := roots
	for sweep := 0; len(frontier) > 0 && sweep <= DefaultMaxDepth; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := s.bom.GetEdgesForParents(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("批量查询BOM失败: %w", err)
		}
		for _, id := range frontier {
			visited[id] = true
		}

		var next []int64
		for _, e := range edges {
			edgesByParent[e.ParentItemID] = append(edgesByParent[e.ParentItemID], e)
			if !visited[e.ChildItemID] {
				visited[e.ChildItemID] = true
				next = append(next, e.ChildItemID)
			}
		}
		frontier = next
	}
	return edgesByParent, nil
}

// batchMemoKey 缓存键。同一品目在不同深度的可用层数不同，须分开缓存。
type batchMemoKey struct {
	itemID int64
	depth  int
}

// batchCalculator 闭包内的纯内存成本递归。memo 按（品目, 深度）缓存
// 1个单位的子树成本；命中环截断的结果依赖具体路径，不进缓存。
type batchCalculator struct {
	edgesByParent map[int64][]entity.BOMEdge
	items         map[int64]entity.Item
	priceOf       func(int64) decimal.Decimal
	maxDepth      int

	mu   sync.Mutex
	memo map[batchMemoKey]entity.CostBreakdown
}

// unitCost 品目在指定深度的单位子树成本。层数语义与单品展开一致：
// 超出上限的子装配分支整体省略，叶子行最深出现在 maxDepth 层。
func (c *batchCalculator) unitCost(itemID int64, depth int, path map[int64]bool) (entity.CostBreakdown, bool, error) {
	key := batchMemoKey{itemID: itemID, depth: depth}
	c.mu.Lock()
	cached, ok := c.memo[key]
	c.mu.Unlock()
	if ok {
		return cached, true, nil
	}

	childDepth := depth + 1
	total := entity.ZeroCostBreakdown()
	clean := true
	for _, edge := range c.edgesByParent[itemID] {
		childID := edge.ChildItemID
		if edge.QuantityRequired.IsNegative() {
			return entity.CostBreakdown{}, false, fmt.Errorf("%w: bom %d quantity_required %s is negative", ErrInvalidArgument, edge.BOMID, edge.QuantityRequired)
		}
		if path[childID] {
			clean = false
			continue
		}
		if _, ok := c.items[childID]; !ok {
			// 子品目已停用
			continue
		}

		if len(c.edgesByParent[childID]) > 0 {
			if childDepth >= c.maxDepth {
				continue
			}
			path[childID] = true
			sub, subClean, err := c.unitCost(childID, childDepth, path)
			delete(path, childID)
			if err != nil {
				return entity.CostBreakdown{}, false, err
			}
			clean = clean && subClean
			total = total.Add(sub.Scale(edge.QuantityRequired))
			continue
		}

		leaf, err := ComputeCost(edge.QuantityRequired, c.priceOf(childID), edge.ScrapRate)
		if err != nil {
			return entity.CostBreakdown{}, false, fmt.Errorf("bom %d: %w", edge.BOMID, err)
		}
		total = total.Add(leaf)
	}

	if clean {
		c.mu.Lock()
		c.memo[key] = total
		c.mu.Unlock()
	}
	return total, clean, nil
}
