package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/cache"
	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/repository"
	"github.com/bitfantasy/nimo-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore 内存数据源，覆盖handler测试需要的读取接口
type memStore struct {
	items map[int64]entity.Item
	edges []entity.BOMEdge
}

func (m *memStore) FindByID(_ context.Context, itemID int64) (*entity.Item, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (m *memStore) GetItems(_ context.Context, itemIDs []int64) (map[int64]entity.Item, error) {
	out := make(map[int64]entity.Item)
	for _, id := range itemIDs {
		if item, ok := m.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (m *memStore) GetChildren(_ context.Context, parentItemID int64) ([]entity.BOMEdge, error) {
	var out []entity.BOMEdge
	for _, e := range m.edges {
		if e.ParentItemID == parentItemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) GetParents(_ context.Context, childItemID int64) ([]entity.BOMEdge, error) {
	var out []entity.BOMEdge
	for _, e := range m.edges {
		if e.ChildItemID == childItemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) GetEdgesForParents(_ context.Context, parentItemIDs []int64) ([]entity.BOMEdge, error) {
	want := make(map[int64]bool)
	for _, id := range parentItemIDs {
		want[id] = true
	}
	var out []entity.BOMEdge
	for _, e := range m.edges {
		if want[e.ParentItemID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveEdges(_ context.Context) ([]entity.BOMEdge, error) {
	return m.edges, nil
}

func (m *memStore) ListEdgesByChildInventoryType(_ context.Context, _ *int64, _ string, _, _ int) ([]entity.BOMEdge, int64, error) {
	return nil, 0, nil
}

func (m *memStore) FindMonthly(_ context.Context, _ int64, _ time.Time) (*entity.PriceHistoryEntry, error) {
	return nil, repository.ErrNotFound
}

func (m *memStore) GetMonthlyPrices(_ context.Context, _ []int64, _ time.Time) (map[int64]decimal.Decimal, error) {
	return map[int64]decimal.Decimal{}, nil
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := &memStore{
		items: map[int64]entity.Item{
			1: {ItemID: 1, ItemCode: "FIN-100", ItemName: "成品支架", Unit: "EA", InventoryType: "FINISHED_GOOD", IsActive: true},
			2: {ItemID: 2, ItemCode: "RAW-010", ItemName: "冷轧钢板", Unit: "EA", InventoryType: "RAW", BasePrice: decimal.NewFromInt(100), IsActive: true},
		},
		edges: []entity.BOMEdge{
			{BOMID: 1, ParentItemID: 1, ChildItemID: 2, QuantityRequired: decimal.NewFromInt(2), ScrapRate: decimal.RequireFromString("0.05"), IsActive: true},
		},
	}

	price := service.NewPriceResolver(store, store)
	services := &service.Services{
		Price:      price,
		Explosion:  service.NewExplosionService(store, store, price),
		Tree:       service.NewTreeService(store, store),
		WhereUsed:  service.NewWhereUsedService(store, store, price),
		BatchCost:  service.NewBatchCostService(store, store, store),
		Coil:       service.NewCoilCostService(store, store, store),
		Validation: service.NewValidationService(store, store),
	}
	treeCache := cache.NewTreeCache(nil, 0, zap.NewNop())
	handlers := NewHandlers(services, treeCache, zap.NewNop())

	r := gin.New()
	bom := r.Group("/api/v1/erp/bom")
	bom.GET("/explosion/:parent_item_id", handlers.BOM.Explode)
	bom.GET("/tree", handlers.BOM.Tree)
	bom.GET("/where-used/:child_item_id", handlers.BOM.WhereUsed)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestExplodeEndpoint(t *testing.T) {
	r := testRouter()
	w, body := doGet(t, r, "/api/v1/erp/bom/explosion/1?quantity=3&price_month=2026-08")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["code"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "2026-08-01", data["price_month"])
	reqs := data["material_requirements"].([]any)
	require.Len(t, reqs, 1)
}

func TestExplodeEndpointNotFound(t *testing.T) {
	r := testRouter()
	w, body := doGet(t, r, "/api/v1/erp/bom/explosion/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(10002), body["code"])
}

func TestExplodeEndpointBadArgs(t *testing.T) {
	r := testRouter()

	w, body := doGet(t, r, "/api/v1/erp/bom/explosion/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(10001), body["code"])

	w, body = doGet(t, r, "/api/v1/erp/bom/explosion/1?quantity=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(10001), body["code"])

	w, body = doGet(t, r, "/api/v1/erp/bom/explosion/1?price_month=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(10001), body["code"])
}

func TestTreeEndpointWithoutRedis(t *testing.T) {
	r := testRouter()
	w, body := doGet(t, r, "/api/v1/erp/bom/tree")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["cached"])
	assert.Equal(t, float64(1), data["total"])
}

func TestWhereUsedEndpoint(t *testing.T) {
	r := testRouter()

	// 不带参数时默认附带成本
	w, body := doGet(t, r, "/api/v1/erp/bom/where-used/2")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["used_in_count"])
	totalCost, ok := summary["total_cost"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "200", totalCost["material_cost"])

	// 显式关闭成本
	w, body = doGet(t, r, "/api/v1/erp/bom/where-used/2?include_costs=false")
	assert.Equal(t, http.StatusOK, w.Code)
	summary = body["data"].(map[string]any)["summary"].(map[string]any)
	_, ok = summary["total_cost"]
	assert.False(t, ok)
}
