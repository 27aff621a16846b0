package service

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
	"github.com/shopspring/decimal"
)

// DefaultMaxDepth BOM展开的默认最大层数
const DefaultMaxDepth = 10

// ItemReader 品目主数据读取接口
type ItemReader interface {
	FindByID(ctx context.Context, itemID int64) (*entity.Item, error)
	GetItems(ctx context.Context, itemIDs []int64) (map[int64]entity.Item, error)
}

// BOMReader BOM边读取接口
type BOMReader interface {
	GetChildren(ctx context.Context, parentItemID int64) ([]entity.BOMEdge, error)
	GetParents(ctx context.Context, childItemID int64) ([]entity.BOMEdge, error)
	GetEdgesForParents(ctx context.Context, parentItemIDs []int64) ([]entity.BOMEdge, error)
	ListActiveEdges(ctx context.Context) ([]entity.BOMEdge, error)
	ListEdgesByChildInventoryType(ctx context.Context, parentItemID *int64, inventoryType string, limit, offset int) ([]entity.BOMEdge, int64, error)
}

// PriceReader 月度单价读取接口
type PriceReader interface {
	FindMonthly(ctx context.Context, itemID int64, month time.Time) (*entity.PriceHistoryEntry, error)
	GetMonthlyPrices(ctx context.Context, itemIDs []int64, month time.Time) (map[int64]decimal.Decimal, error)
}

// Services ERP 服务集合
type Services struct {
	Price      *PriceResolver
	Explosion  *ExplosionService
	Tree       *TreeService
	WhereUsed  *WhereUsedService
	BatchCost  *BatchCostService
	Coil       *CoilCostService
	Validation *ValidationService
}

func NewServices(repos *repository.Repositories) *Services {
	price := NewPriceResolver(repos.Item, repos.Price)
	return &Services{
		Price:      price,
		Explosion:  NewExplosionService(repos.Item, repos.BOM, price),
		Tree:       NewTreeService(repos.Item, repos.BOM),
		WhereUsed:  NewWhereUsedService(repos.Item, repos.BOM, price),
		BatchCost:  NewBatchCostService(repos.Item, repos.BOM, repos.Price),
		Coil:       NewCoilCostService(repos.Item, repos.BOM, repos.Price),
		Validation: NewValidationService(repos.Item, repos.BOM),
	}
}
