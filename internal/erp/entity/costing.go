package entity

import (
	"github.com/shopspring/decimal"
)

// CostBreakdown 单条BOM边的成本拆分。每次调用即时计算，不落库。
//
//	material_cost  = quantity × unit_price
//	scrap_quantity = quantity × scrap_rate
//	scrap_revenue  = scrap_quantity × unit_price
//	net_cost       = material_cost − scrap_revenue
type CostBreakdown struct {
	MaterialCost  decimal.Decimal `json:"material_cost"`
	ScrapQuantity decimal.Decimal `json:"scrap_quantity"`
	ScrapRevenue  decimal.Decimal `json:"scrap_revenue"`
	NetCost       decimal.Decimal `json:"net_cost"`
}

// ZeroCostBreakdown 全零成本，用于无BOM品目。
func ZeroCostBreakdown() CostBreakdown {
	return CostBreakdown{
		MaterialCost:  decimal.Zero,
		ScrapQuantity: decimal.Zero,
		ScrapRevenue:  decimal.Zero,
		NetCost:       decimal.Zero,
	}
}

// Add 逐字段累加，用于汇总。
func (c CostBreakdown) Add(o CostBreakdown) CostBreakdown {
	return CostBreakdown{
		MaterialCost:  c.MaterialCost.Add(o.MaterialCost),
		ScrapQuantity: c.ScrapQuantity.Add(o.ScrapQuantity),
		ScrapRevenue:  c.ScrapRevenue.Add(o.ScrapRevenue),
		NetCost:       c.NetCost.Add(o.NetCost),
	}
}

// Scale 按数量倍乘，用于把单位成本放大到实际产量。
func (c CostBreakdown) Scale(q decimal.Decimal) CostBreakdown {
	return CostBreakdown{
		MaterialCost:  c.MaterialCost.Mul(q),
		ScrapQuantity: c.ScrapQuantity.Mul(q),
		ScrapRevenue:  c.ScrapRevenue.Mul(q),
		NetCost:       c.NetCost.Mul(q),
	}
}

// MaterialRequirement BOM展开输出的一行物料需求。Level 1 为根的直接子级。
type MaterialRequirement struct {
	ItemID           int64           `json:"item_id"`
	ItemCode         string          `json:"item_code"`
	ItemName         string          `json:"item_name"`
	Spec             string          `json:"spec,omitempty"`
	Unit             string          `json:"unit"`
	InventoryType    string          `json:"inventory_type"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Level            int             `json:"level"`
	CostBreakdown
}

// ExplosionTotals 展开结果的汇总。
type ExplosionTotals struct {
	MaterialCost    decimal.Decimal `json:"material_cost"`
	ScrapRevenue    decimal.Decimal `json:"scrap_revenue"`
	NetCost         decimal.Decimal `json:"net_cost"`
	TotalItems      int             `json:"total_items"`
	MaxLevel        int             `json:"max_level"`
	CyclesTruncated int             `json:"cycles_truncated"`
	CountsByInvType map[string]int  `json:"counts_by_inventory_type"`
}

// ExplosionResult BOM展开的完整输出。
type ExplosionResult struct {
	ParentItemID       int64                 `json:"parent_item_id"`
	ProductionQuantity decimal.Decimal       `json:"production_quantity"`
	PriceMonth         string                `json:"price_month"`
	Requirements       []MaterialRequirement `json:"material_requirements"`
	Totals             ExplosionTotals       `json:"totals"`
}

// TreeNode 全量BOM树的一个节点，仅用于展示。
type TreeNode struct {
	BOMID            int64           `json:"bom_id"`
	ParentItemID     int64           `json:"parent_item_id"`
	ParentItemCode   string          `json:"parent_item_code"`
	ParentItemName   string          `json:"parent_item_name"`
	ChildItemID      int64           `json:"child_item_id"`
	ChildItemCode    string          `json:"child_item_code"`
	ChildItemName    string          `json:"child_item_name"`
	Unit             string          `json:"unit"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Level            int             `json:"level"`
	Depth            int             `json:"depth"`
	NamePath         []string        `json:"name_path"`
	Cycle            bool            `json:"cycle,omitempty"`
}

// BatchCostEntry 批量成本结果中单个品目的条目。
type BatchCostEntry struct {
	HasBOM        bool          `json:"has_bom"`
	CostBreakdown CostBreakdown `json:"cost_breakdown"`
}

// BatchCostResult 批量成本计算输出。Results 覆盖全部请求的品目ID。
type BatchCostResult struct {
	Results  map[int64]BatchCostEntry `json:"results"`
	Metadata BatchCostMetadata        `json:"metadata"`
}

// BatchCostMetadata 批量成本计算的统计信息。
type BatchCostMetadata struct {
	TotalItems      int    `json:"total_items"`
	ItemsWithBOM    int    `json:"items_with_bom"`
	ItemsWithoutBOM int    `json:"items_without_bom"`
	PriceMonth      string `json:"price_month"`
}
