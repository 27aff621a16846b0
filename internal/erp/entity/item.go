package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType 品目类型
const (
	ItemTypeRaw         = "RAW"          // 原材料
	ItemTypeSubAssembly = "SUB_ASSEMBLY" // 半成品/组件
	ItemTypeFinished    = "FINISHED"     // 成品
)

// InventoryType 库存分类
const (
	InventoryTypeCoil         = "COIL"          // 卷料
	InventoryTypeRaw          = "RAW"           // 采购原材料
	InventoryTypeSemiFinished = "SEMI_FINISHED" // 半成品
	InventoryTypeFinishedGood = "FINISHED_GOOD" // 成品
)

// Item 品目主数据。主数据的写入由外部服务负责，本服务只读。
type Item struct {
	ItemID        int64           `json:"item_id" gorm:"primaryKey;autoIncrement"`
	ItemCode      string          `json:"item_code" gorm:"size:64;not null;uniqueIndex"`
	ItemName      string          `json:"item_name" gorm:"size:128;not null"`
	Spec          string          `json:"spec" gorm:"size:200"`
	Unit          string          `json:"unit" gorm:"size:20;not null;default:EA"`
	ItemType      string          `json:"item_type" gorm:"size:20;not null;default:RAW"`
	InventoryType string          `json:"inventory_type" gorm:"size:20;not null;default:RAW;index"`
	BasePrice     decimal.Decimal `json:"base_price" gorm:"type:decimal(14,4);not null;default:0"`
	CurrentStock  decimal.Decimal `json:"current_stock" gorm:"type:decimal(14,4);not null;default:0"`
	IsActive      bool            `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}
