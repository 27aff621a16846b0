package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-erp/internal/erp/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTreeTTL 树缓存默认过期时间
const DefaultTreeTTL = 5 * time.Minute

// TreeCache BOM树响应的Redis缓存。只在HTTP层使用，计算层不感知缓存。
// 客户端为空时所有操作退化为未命中，服务可以不依赖Redis启动。
type TreeCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTreeCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *TreeCache {
	if ttl <= 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Key 缓存键。root 为 nil 表示全量树。
func (c *TreeCache) Key(root *int64, maxDepth int) string {
	if root != nil {
		return fmt.Sprintf("erp:bom:tree:%d:%d", *root, maxDepth)
	}
	return fmt.Sprintf("erp:bom:tree:all:%d", maxDepth)
}

// Get 读取缓存的树节点列表，未命中或反序列化失败返回 false
func (c *TreeCache) Get(ctx context.Context, key string) ([]entity.TreeNode, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("读取树缓存失败", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var nodes []entity.TreeNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		c.logger.Warn("树缓存反序列化失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return nodes, true
}

// Set 写入缓存，失败只记日志不影响请求
func (c *TreeCache) Set(ctx context.Context, key string, nodes []entity.TreeNode) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		c.logger.Warn("树缓存序列化失败", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("写入树缓存失败", zap.String("key", key), zap.Error(err))
	}
}
