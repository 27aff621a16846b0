package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/cache"
	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/bitfantasy/nimo-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BOMHandler BOM展开、成本核算相关接口
type BOMHandler struct {
	svc       *service.Services
	treeCache *cache.TreeCache
	logger    *zap.Logger
}

func NewBOMHandler(svc *service.Services, treeCache *cache.TreeCache, logger *zap.Logger) *BOMHandler {
	return &BOMHandler{svc: svc, treeCache: treeCache, logger: logger}
}

// Explode GET /api/v1/erp/bom/explosion/:parent_item_id
// query: quantity(默认1) price_month(YYYY-MM) max_level(默认10)
func (h *BOMHandler) Explode(c *gin.Context) {
	parentID, err := strconv.ParseInt(c.Param("parent_item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "parent_item_id 必须是整数"})
		return
	}

	quantity := decimal.NewFromInt(1)
	if q := c.Query("quantity"); q != "" {
		quantity, err = decimal.NewFromString(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "quantity 格式不正确"})
			return
		}
	}

	month, ok := parseMonth(c)
	if !ok {
		return
	}
	maxLevel, _ := strconv.Atoi(c.DefaultQuery("max_level", "0"))

	result, err := h.svc.Explosion.Explode(c.Request.Context(), parentID, quantity, month, maxLevel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// Tree GET /api/v1/erp/bom/tree
// query: parent_item_id(可选，缺省展开所有顶层品目) max_depth(默认10)。结果短时缓存。
func (h *BOMHandler) Tree(c *gin.Context) {
	var root *int64
	if raw := c.Query("parent_item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "parent_item_id 必须是整数"})
			return
		}
		root = &id
	}
	maxDepth, _ := strconv.Atoi(c.DefaultQuery("max_depth", "0"))
	if maxDepth <= 0 {
		maxDepth = service.DefaultMaxDepth
	}

	ctx := c.Request.Context()
	key := h.treeCache.Key(root, maxDepth)
	if nodes, hit := h.treeCache.Get(ctx, key); hit {
		h.logger.Debug("BOM树缓存命中", zap.String("key", key))
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"nodes": nodes, "total": len(nodes), "cached": true}})
		return
	}

	nodes, err := h.svc.Tree.FullTree(ctx, root, maxDepth)
	if err != nil {
		respondError(c, err)
		return
	}
	h.treeCache.Set(ctx, key, nodes)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"nodes": nodes, "total": len(nodes), "cached": false}})
}

// WhereUsed GET /api/v1/erp/bom/where-used/:child_item_id
// query: include_costs(默认true) price_month(YYYY-MM)
func (h *BOMHandler) WhereUsed(c *gin.Context) {
	childID, err := strconv.ParseInt(c.Param("child_item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "child_item_id 必须是整数"})
		return
	}
	includeCosts, _ := strconv.ParseBool(c.DefaultQuery("include_costs", "true"))
	month, ok := parseMonth(c)
	if !ok {
		return
	}

	result, err := h.svc.WhereUsed.WhereUsed(c.Request.Context(), childID, includeCosts, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// BatchCost POST /api/v1/erp/bom/batch-cost
func (h *BOMHandler) BatchCost(c *gin.Context) {
	var req struct {
		ItemIDs    []int64 `json:"item_ids" binding:"required"`
		PriceMonth string  `json:"price_month"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}

	var month time.Time
	if req.PriceMonth != "" {
		var err error
		month, err = entity.NormalizeMonth(req.PriceMonth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
			return
		}
	}

	result, err := h.svc.BatchCost.BatchCost(c.Request.Context(), req.ItemIDs, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// CoilMaterials GET /api/v1/erp/bom/coil-materials
// query: parent_item_id(可选) price_month limit offset
func (h *BOMHandler) CoilMaterials(c *gin.Context) {
	var parent *int64
	if raw := c.Query("parent_item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "parent_item_id 必须是整数"})
			return
		}
		parent = &id
	}
	month, ok := parseMonth(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.svc.Coil.ListCoilMaterials(c.Request.Context(), parent, month, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// Validate GET /api/v1/erp/bom/validate/:parent_item_id
func (h *BOMHandler) Validate(c *gin.Context) {
	parentID, err := strconv.ParseInt(c.Param("parent_item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "parent_item_id 必须是整数"})
		return
	}

	result, err := h.svc.Validation.ValidateBOM(c.Request.Context(), parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// parseMonth 解析 price_month 查询参数，空值返回零值时间交给服务层取默认
func parseMonth(c *gin.Context) (time.Time, bool) {
	raw := c.Query("price_month")
	if raw == "" {
		return time.Time{}, true
	}
	month, err := entity.NormalizeMonth(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return time.Time{}, false
	}
	return month, true
}
