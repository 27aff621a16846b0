package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMEdge 单条BOM用量关系：生产1个父品目消耗 QuantityRequired 个子品目。
// 边集合理论上是DAG，但数据层不强制无环，遍历时必须自带环保护。
type BOMEdge struct {
	BOMID            int64           `json:"bom_id" gorm:"primaryKey;autoIncrement"`
	ParentItemID     int64           `json:"parent_item_id" gorm:"not null;index;uniqueIndex:idx_bom_parent_child,priority:1"`
	ChildItemID      int64           `json:"child_item_id" gorm:"not null;index;uniqueIndex:idx_bom_parent_child,priority:2"`
	QuantityRequired decimal.Decimal `json:"quantity_required" gorm:"type:decimal(14,4);not null"`
	LevelNo          int             `json:"level_no" gorm:"not null;default:1"`
	LaborCost        decimal.Decimal `json:"labor_cost" gorm:"type:decimal(14,4);not null;default:0"`
	ScrapRate        decimal.Decimal `json:"scrap_rate" gorm:"type:decimal(8,4);not null;default:0"`
	IsActive         bool            `json:"is_active" gorm:"not null;default:true;index"`
	Notes            string          `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (BOMEdge) TableName() string {
	return "bom"
}
