package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Repositories ERP 仓库集合
type Repositories struct {
	Item  *ItemRepository
	BOM   *BOMRepository
	Price *PriceRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Item:  NewItemRepository(db),
		BOM:   NewBOMRepository(db),
		Price: NewPriceRepository(db),
	}
}
