package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/nimo-erp/internal/erp/cache"
	"github.com/bitfantasy/nimo-erp/internal/erp/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers ERP HTTP处理器集合
type Handlers struct {
	BOM *BOMHandler
}

func NewHandlers(services *service.Services, treeCache *cache.TreeCache, logger *zap.Logger) *Handlers {
	return &Handlers{
		BOM: NewBOMHandler(services, treeCache, logger),
	}
}

// respondError 哨兵错误到HTTP状态码与业务码的统一映射
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
