package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有ERP表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 主数据
		&Item{},

		// BOM结构
		&BOMEdge{},

		// 价格
		&PriceHistoryEntry{},
	)
}
