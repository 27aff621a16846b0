package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// ItemRepository 品目主数据仓库（只读）
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// FindByID 按ID获取启用的品目
func (r *ItemRepository) FindByID(ctx context.Context, itemID int64) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND is_active = true", itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetItems 批量获取品目，单次查询
func (r *ItemRepository) GetItems(ctx context.Context, itemIDs []int64) (map[int64]entity.Item, error) {
	result := make(map[int64]entity.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Where("item_id IN ? AND is_active = true", itemIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.ItemID] = item
	}
	return result, nil
}
