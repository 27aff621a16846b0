package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
)

// ValidationService BOM结构校验（只读，不做任何修复）
type ValidationService struct {
	items ItemReader
	bom   BOMReader
}

func NewValidationService(items ItemReader, bom BOMReader) *ValidationService {
	return &ValidationService{items: items, bom: bom}
}

// ValidateBOM 校验某父品目的BOM结构：环、重复边、非正用量记为错误，
// 停用的子品目记为警告。品目本身不存在返回 ErrNotFound。
func (s *ValidationService) ValidateBOM(ctx context.Context, parentItemID int64) (*entity.ValidationResult, error) {
	if parentItemID <= 0 {
		return nil, fmt.Errorf("%w: parent item id %d", ErrInvalidArgument, parentItemID)
	}

	if _, err := s.items.FindByID(ctx, parentItemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %d", ErrNotFound, parentItemID)
		}
		return nil, fmt.Errorf("查询品目失败: %w", err)
	}

	result := &entity.ValidationResult{
		ParentItemID: parentItemID,
		Errors:       []string{},
		Warnings:     []string{},
	}

	edgesByParent, err := s.collectSubtree(ctx, parentItemID)
	if err != nil {
		return nil, err
	}
	if len(edgesByParent[parentItemID]) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("品目 %d 没有启用的BOM", parentItemID))
		result.Valid = true
		return result, nil
	}

	idSet := make(map[int64]bool)
	for pid, edges := range edgesByParent {
		idSet[pid] = true
		for _, e := range edges {
			idSet[e.ChildItemID] = true
		}
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	items, err := s.items.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("批量查询品目失败: %w", err)
	}

	for pid, edges := range edgesByParent {
		dup := make(map[int64]int)
		for _, e := range edges {
			dup[e.ChildItemID]++
			if !e.QuantityRequired.IsPositive() {
				result.Errors = append(result.Errors,
					fmt.Sprintf("bom %d: 用量 %s 必须为正", e.BOMID, e.QuantityRequired))
			}
			if _, ok := items[e.ChildItemID]; !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("bom %d: 子品目 %d 不存在或已停用", e.BOMID, e.ChildItemID))
			}
		}
		for child, n := range dup {
			if n > 1 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("品目 %d 下子品目 %d 存在 %d 条重复的启用边", pid, child, n))
			}
		}
	}

	s.detectCycles(parentItemID, edgesByParent, map[int64]bool{parentItemID: true}, result)

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// collectSubtree 按层批量拉取从父品目可达的全部启用边
func (s *ValidationService) collectSubtree(ctx context.Context, parentItemID int64) (map[int64][]entity.BOMEdge, error) {
	edgesByParent := make(map[int64][]entity.BOMEdge)
	visited := map[int64]bool{parentItemID: true}

	frontier := []int64{parentItemID}
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := s.bom.GetEdgesForParents(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("批量查询BOM失败: %w", err)
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

func (s *ValidationService) detectCycles(itemID int64, edgesByParent map[int64][]entity.BOMEdge, path map[int64]bool, result *entity.ValidationResult) {
	for _, edge := range edgesByParent[itemID] {
		if path[edge.ChildItemID] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("检测到循环引用: 品目 %d -> 品目 %d (bom %d)", itemID, edge.ChildItemID, edge.BOMID))
			continue
		}
		path[edge.ChildItemID] = true
		s.detectCycles(edge.ChildItemID, edgesByParent, path, result)
		delete(path, edge.ChildItemID)
	}
}
