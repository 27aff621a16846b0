package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceRepository 月度单价仓库（只读）
type PriceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// FindMonthly 某品目某月的单价记录。上游偶有重复时取最早写入的一条。
func (r *PriceRepository) FindMonthly(ctx context.Context, itemID int64, month time.Time) (*entity.PriceHistoryEntry, error) {
	var e entity.PriceHistoryEntry
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND price_month = ?", itemID, month).
		Order("id").
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetMonthlyPrices 批量获取多个品目某月的单价，单次查询
func (r *PriceRepository) GetMonthlyPrices(ctx context.Context, itemIDs []int64, month time.Time) (map[int64]decimal.Decimal, error) {
	result := make(map[int64]decimal.Decimal, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}
	var entries []entity.PriceHistoryEntry
	err := r.db.WithContext(ctx).
		Where("item_id IN ? AND price_month = ?", itemIDs, month).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, ok := result[e.ItemID]; !ok {
			result[e.ItemID] = e.UnitPrice
		}
	}
	return result, nil
}
