package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
)

// TreeService BOM树视图构建
type TreeService struct {
	items ItemReader
	bom   BOMReader
}

func NewTreeService(items ItemReader, bom BOMReader) *TreeService {
	return &TreeService{items: items, bom: bom}
}

// FullTree 构建BOM树的扁平节点列表。rootItemID 为空时从所有顶层品目
// （只作为父级、从不作为子级出现的品目）展开。节点不做任何成本计算。
func (s *TreeService) FullTree(ctx context.Context, rootItemID *int64, maxDepth int) ([]entity.TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	if rootItemID != nil {
		if *rootItemID <= 0 {
			return nil, fmt.Errorf("%w: root item id %d", ErrInvalidArgument, *rootItemID)
		}
		if _, err := s.items.FindByID(ctx, *rootItemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: item %d", ErrNotFound, *rootItemID)
			}
			return nil, fmt.Errorf("查询品目失败: %w", err)
		}
	}

	edges, err := s.bom.ListActiveEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}

	idSet := make(map[int64]bool)
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

	return BuildTree(edges, items, rootItemID, maxDepth), nil
}

// BuildTree 纯内存的树构建。同一父级下的子级按品目编码排序；递归路径上
// 重复出现的品目输出 Cycle 标记节点且不再下钻；超过 maxDepth 的节点省略。
func BuildTree(edges []entity.BOMEdge, items map[int64]entity.Item, rootItemID *int64, maxDepth int) []entity.TreeNode {
	byParent := make(map[int64][]entity.BOMEdge)
	for _, e := range edges {
		if _, ok := items[e.ChildItemID]; !ok {
			continue
		}
		byParent[e.ParentItemID] = append(byParent[e.ParentItemID], e)
	}
	for pid := range byParent {
		kids := byParent[pid]
		sort.SliceStable(kids, func(i, j int) bool {
			return items[kids[i].ChildItemID].ItemCode < items[kids[j].ChildItemID].ItemCode
		})
	}

	var roots []int64
	if rootItemID != nil {
		roots = []int64{*rootItemID}
	} else {
		childSet := make(map[int64]bool)
		for _, e := range edges {
			childSet[e.ChildItemID] = true
		}
		for pid := range byParent {
			if !childSet[pid] {
				roots = append(roots, pid)
			}
		}
		sort.Slice(roots, func(i, j int) bool {
			return items[roots[i]].ItemCode < items[roots[j]].ItemCode
		})
	}

	b := &treeBuilder{byParent: byParent, items: items, maxDepth: maxDepth}
	nodes := []entity.TreeNode{}
	for _, root := range roots {
		path := map[int64]bool{root: true}
		nodes = b.expand(nodes, root, []string{items[root].ItemName}, 1, path)
	}
	return nodes
}

type treeBuilder struct {
	byParent map[int64][]entity.BOMEdge
	items    map[int64]entity.Item
	maxDepth int
}

func (b *treeBuilder) expand(nodes []entity.TreeNode, parentID int64, namePath []string, depth int, path map[int64]bool) []entity.TreeNode {
	if depth > b.maxDepth {
		return nodes
	}
	parent := b.items[parentID]
	for _, edge := range b.byParent[parentID] {
		child := b.items[edge.ChildItemID]
		cycle := path[edge.ChildItemID]

		childPath := append(append([]string{}, namePath...), child.ItemName)
		nodes = append(nodes, entity.TreeNode{
			BOMID:            edge.BOMID,
			ParentItemID:     parentID,
			ParentItemCode:   parent.ItemCode,
			ParentItemName:   parent.ItemName,
			ChildItemID:      child.ItemID,
			ChildItemCode:    child.ItemCode,
			ChildItemName:    child.ItemName,
			Unit:             child.Unit,
			QuantityRequired: edge.QuantityRequired,
			Level:            depth,
			Depth:            depth,
			NamePath:         childPath,
			Cycle:            cycle,
		})
		if cycle {
			continue
		}
		path[edge.ChildItemID] = true
		nodes = b.expand(nodes, edge.ChildItemID, childPath, depth+1, path)
		delete(path, edge.ChildItemID)
	}
	return nodes
}
