package entity

import (
	"github.com/shopspring/decimal"
)

// ItemSummary 品目摘要，用于反查与卷料视图的回显
type ItemSummary struct {
	ItemID        int64  `json:"item_id"`
	ItemCode      string `json:"item_code"`
	ItemName      string `json:"item_name"`
	Spec          string `json:"spec,omitempty"`
	Unit          string `json:"unit"`
	InventoryType string `json:"inventory_type"`
}

// WhereUsedUsage 反查结果中某父品目下的一条用量明细
type WhereUsedUsage struct {
	BOMID            int64           `json:"bom_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Unit             string          `json:"unit"`
	ScrapRate        decimal.Decimal `json:"scrap_rate"`
	Notes            string          `json:"notes,omitempty"`
	Cost             *CostBreakdown  `json:"cost,omitempty"`
}

// WhereUsedParent 使用该子品目的一个父品目及其用量明细
type WhereUsedParent struct {
	ParentItem    ItemSummary      `json:"parent_item"`
	UsageDetails  []WhereUsedUsage `json:"usage_details"`
	TotalQuantity decimal.Decimal  `json:"total_quantity"`
}

// WhereUsedSummary 反查汇总。成本字段仅在请求附带成本时填充。
type WhereUsedSummary struct {
	UsedInCount     int            `json:"used_in_count"`
	TotalUsageCount int            `json:"total_usage_count"`
	TotalCost       *CostBreakdown `json:"total_cost,omitempty"`
}

// WhereUsedResult 单层反查（where-used）的完整输出
type WhereUsedResult struct {
	ChildItem ItemSummary       `json:"child_item"`
	Parents   []WhereUsedParent `json:"parents"`
	Summary   WhereUsedSummary  `json:"summary"`
}

// CoilMaterialRow 卷料用量视图的一行
type CoilMaterialRow struct {
	BOMID            int64           `json:"bom_id"`
	ParentItem       ItemSummary     `json:"parent_item"`
	ChildItem        ItemSummary     `json:"child_item"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	ScrapRate        decimal.Decimal `json:"scrap_rate"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	CostBreakdown
}

// CoilMaterialList 卷料用量视图输出，带分页与当页成本汇总
type CoilMaterialList struct {
	Rows       []CoilMaterialRow `json:"rows"`
	Total      int64             `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	PriceMonth string            `json:"price_month"`
	Summary    CostBreakdown     `json:"summary"`
}

// ValidationResult BOM结构校验输出。Errors 非空则 Valid 为 false。
type ValidationResult struct {
	ParentItemID int64    `json:"parent_item_id"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}
