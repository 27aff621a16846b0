package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// assertDecimal 按数值比较decimal，忽略尾零差异
func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "expected %s, got %s", want, got)
}

// fakeStore 内存版的品目/BOM/价格数据源，测试专用
type fakeStore struct {
	items  map[int64]entity.Item
	edges  []entity.BOMEdge
	prices map[string]decimal.Decimal

	nextBOMID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  make(map[int64]entity.Item),
		prices: make(map[string]decimal.Decimal),
	}
}

func (f *fakeStore) addItem(id int64, code, name, invType string, basePrice string) {
	f.items[id] = entity.Item{
		ItemID:        id,
		ItemCode:      code,
		ItemName:      name,
		Unit:          "EA",
		InventoryType: invType,
		BasePrice:     decimal.RequireFromString(basePrice),
		IsActive:      true,
	}
}

func (f *fakeStore) deactivateItem(id int64) {
	item := f.items[id]
	item.IsActive = false
	f.items[id] = item
}

func (f *fakeStore) addEdge(parent, child int64, qty, scrapRate string) int64 {
	f.nextBOMID++
	f.edges = append(f.edges, entity.BOMEdge{
		BOMID:            f.nextBOMID,
		ParentItemID:     parent,
		ChildItemID:      child,
		QuantityRequired: decimal.RequireFromString(qty),
		ScrapRate:        decimal.RequireFromString(scrapRate),
		IsActive:         true,
	})
	return f.nextBOMID
}

func (f *fakeStore) deactivateEdge(bomID int64) {
	for i := range f.edges {
		if f.edges[i].BOMID == bomID {
			f.edges[i].IsActive = false
		}
	}
}

func (f *fakeStore) setPrice(itemID int64, month time.Time, price string) {
	f.prices[priceKey(itemID, month)] = decimal.RequireFromString(price)
}

func priceKey(itemID int64, month time.Time) string {
	return fmt.Sprintf("%d|%s", itemID, month.Format("2006-01-02"))
}

// --- ItemReader ---

func (f *fakeStore) FindByID(_ context.Context, itemID int64) (*entity.Item, error) {
	item, ok := f.items[itemID]
	if !ok || !item.IsActive {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (f *fakeStore) GetItems(_ context.Context, itemIDs []int64) (map[int64]entity.Item, error) {
	result := make(map[int64]entity.Item, len(itemIDs))
	for _, id := range itemIDs {
		if item, ok := f.items[id]; ok && item.IsActive {
			result[id] = item
		}
	}
	return result, nil
}

// --- BOMReader ---

func (f *fakeStore) GetChildren(_ context.Context, parentItemID int64) ([]entity.BOMEdge, error) {
	var out []entity.BOMEdge
	for _, e := range f.edges {
		if e.IsActive && e.ParentItemID == parentItemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetParents(_ context.Context, childItemID int64) ([]entity.BOMEdge, error) {
	var out []entity.BOMEdge
	for _, e := range f.edges {
		if e.IsActive && e.ChildItemID == childItemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEdgesForParents(_ context.Context, parentItemIDs []int64) ([]entity.BOMEdge, error) {
	want := make(map[int64]bool, len(parentItemIDs))
	for _, id := range parentItemIDs {
		want[id] = true
	}
	var out []entity.BOMEdge
	for _, e := range f.edges {
		if e.IsActive && want[e.ParentItemID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveEdges(_ context.Context) ([]entity.BOMEdge, error) {
	var out []entity.BOMEdge
	for _, e := range f.edges {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEdgesByChildInventoryType(_ context.Context, parentItemID *int64, inventoryType string, limit, offset int) ([]entity.BOMEdge, int64, error) {
	var matched []entity.BOMEdge
	for _, e := range f.edges {
		if !e.IsActive {
			continue
		}
		if parentItemID != nil && e.ParentItemID != *parentItemID {
			continue
		}
		child, ok := f.items[e.ChildItemID]
		if !ok || !child.IsActive || child.InventoryType != inventoryType {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].BOMID < matched[j].BOMID })

	total := int64(len(matched))
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// --- PriceReader ---

func (f *fakeStore) FindMonthly(_ context.Context, itemID int64, month time.Time) (*entity.PriceHistoryEntry, error) {
	price, ok := f.prices[priceKey(itemID, month)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entity.PriceHistoryEntry{ItemID: itemID, PriceMonth: month, UnitPrice: price}, nil
}

func (f *fakeStore) GetMonthlyPrices(_ context.Context, itemIDs []int64, month time.Time) (map[int64]decimal.Decimal, error) {
	result := make(map[int64]decimal.Decimal, len(itemIDs))
	for _, id := range itemIDs {
		if price, ok := f.prices[priceKey(id, month)]; ok {
			result[id] = price
		}
	}
	return result, nil
}

func newTestServices(f *fakeStore) *Services {
	price := NewPriceResolver(f, f)
	return &Services{
		Price:      price,
		Explosion:  NewExplosionService(f, f, price),
		Tree:       NewTreeService(f, f),
		WhereUsed:  NewWhereUsedService(f, f, price),
		BatchCost:  NewBatchCostService(f, f, f),
		Coil:       NewCoilCostService(f, f, f),
		Validation: NewValidationService(f, f),
	}
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
