package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/shopspring/decimal"
)

// ComputeCost 单条BOM边的成本计算，纯函数。
//
// 损耗按比例折算为废料数量，废料按同一单价回收抵扣：
//
//	material_cost  = quantity × unit_price
//	scrap_quantity = quantity × scrap_rate
//	scrap_revenue  = scrap_quantity × unit_price
//	net_cost       = material_cost − scrap_revenue
//
// 任一入参为负返回 ErrInvalidArgument。全零入参是合法的，返回全零成本。
func ComputeCost(quantity, unitPrice, scrapRate decimal.Decimal) (entity.CostBreakdown, error) {
	if quantity.IsNegative() {
		return entity.CostBreakdown{}, fmt.Errorf("%w: quantity %s is negative", ErrInvalidArgument, quantity)
	}
	if unitPrice.IsNegative() {
		return entity.CostBreakdown{}, fmt.Errorf("%w: unit price %s is negative", ErrInvalidArgument, unitPrice)
	}
	if scrapRate.IsNegative() {
		return entity.CostBreakdown{}, fmt.Errorf("%w: scrap rate %s is negative", ErrInvalidArgument, scrapRate)
	}

	materialCost := quantity.Mul(unitPrice)
	scrapQuantity := quantity.Mul(scrapRate)
	scrapRevenue := scrapQuantity.Mul(unitPrice)

	return entity.CostBreakdown{
		MaterialCost:  materialCost,
		ScrapQuantity: scrapQuantity,
		ScrapRevenue:  scrapRevenue,
		NetCost:       materialCost.Sub(scrapRevenue),
	}, nil
}
