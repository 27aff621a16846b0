package repository

import (
	"context"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// BOMRepository BOM用量关系仓库（只读）。所有查询只返回启用的边。
type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// GetChildren 某父品目的直接子级边
func (r *BOMRepository) GetChildren(ctx context.Context, parentItemID int64) ([]entity.BOMEdge, error) {
	var edges []entity.BOMEdge
	err := r.db.WithContext(ctx).
		Where("parent_item_id = ? AND is_active = true", parentItemID).
		Order("bom_id").
		Find(&edges).Error
	return edges, err
}

// GetParents 某子品目的直接父级边（where-used）
func (r *BOMRepository) GetParents(ctx context.Context, childItemID int64) ([]entity.BOMEdge, error) {
	var edges []entity.BOMEdge
	err := r.db.WithContext(ctx).
		Where("child_item_id = ? AND is_active = true", childItemID).
		Order("bom_id").
		Find(&edges).Error
	return edges, err
}

// GetEdgesForParents 批量获取多个父品目的边，单次查询
func (r *BOMRepository) GetEdgesForParents(ctx context.Context, parentItemIDs []int64) ([]entity.BOMEdge, error) {
	if len(parentItemIDs) == 0 {
		return nil, nil
	}
	var edges []entity.BOMEdge
	err := r.db.WithContext(ctx).
		Where("parent_item_id IN ? AND is_active = true", parentItemIDs).
		Order("bom_id").
		Find(&edges).Error
	return edges, err
}

// ListActiveEdges 全量启用边，用于整树视图
func (r *BOMRepository) ListActiveEdges(ctx context.Context) ([]entity.BOMEdge, error) {
	var edges []entity.BOMEdge
	err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("bom_id").
		Find(&edges).Error
	return edges, err
}

// ListEdgesByChildInventoryType 按子品目库存分类过滤的边（如卷料），带分页
func (r *BOMRepository) ListEdgesByChildInventoryType(ctx context.Context, parentItemID *int64, inventoryType string, limit, offset int) ([]entity.BOMEdge, int64, error) {
	base := r.db.WithContext(ctx).Model(&entity.BOMEdge{}).
		Joins("JOIN items ON items.item_id = bom.child_item_id").
		Where("bom.is_active = true AND items.is_active = true AND items.inventory_type = ?", inventoryType)
	if parentItemID != nil {
		base = base.Where("bom.parent_item_id = ?", *parentItemID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var edges []entity.BOMEdge
	err := base.Select("bom.*").
		Order("bom.bom_id").
		Limit(limit).Offset(offset).
		Find(&edges).Error
	return edges, total, err
}
