package service

import (
	"context"
	"errors"
	"time"

	"festflow/internal/store"

	"go.uber.org/zap"
)

const (
	// roomCacheGenKey 不在 roomCachePattern 内，invalidate 不会删除它
	roomCacheGenKey  = "festflow:cache:rooms:gen"
	roomCachePattern = "festflow:rooms:*"
)

func occupancyKey(gen string) string {
	return "festflow:rooms:g" + gen + ":occupancy"
}

func roomParticipantsKey(gen, roomID string) string {
	return "festflow:rooms:g" + gen + ":" + roomID + ":participants"
}

// occupancyCache 房间占用/入住名单的读缓存；kv 为 nil 时全部 no-op
// 缓存失效只影响读取新鲜度，不影响写路径结果
// 条目按代号分版本：读者先取代号再读 Store，写回同一代号；
// invalidate 先递增代号，慢读者写回的旧快照落在旧代号下，不会再被读到
type occupancyCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func newOccupancyCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *occupancyCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &occupancyCache{kv: kv, ttl: ttl, logger: logger}
}

// generation 当前代号；计数器不存在视为 "0"，读失败时返回 false（不走缓存）
func (c *occupancyCache) generation(ctx context.Context) (string, bool) {
	if c == nil || c.kv == nil {
		return "", false
	}
	raw, err := c.kv.Get(ctx, roomCacheGenKey)
	if errors.Is(err, store.ErrMiss) {
		return "0", true
	}
	if err != nil {
		c.logger.Warn("Occupancy cache generation read failed", zap.Error(err))
		return "", false
	}
	return string(raw), true
}

// loadCached 命中返回 true；kv 为 nil、未命中或条目损坏均视为未命中
func loadCached[T any](ctx context.Context, c *occupancyCache, key string) (T, bool) {
	var zero T
	if c == nil || c.kv == nil {
		return zero, false
	}
	v, err := store.GetJSON[T](ctx, c.kv, key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			c.logger.Warn("Occupancy cache read failed", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}
	return v, true
}

func (c *occupancyCache) put(ctx context.Context, key string, value any) {
	if c == nil || c.kv == nil {
		return
	}
	if err := store.SetJSON(ctx, c.kv, key, value, c.ttl); err != nil {
		c.logger.Warn("Occupancy cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *occupancyCache) invalidate(ctx context.Context) {
	if c == nil || c.kv == nil {
		return
	}
	if _, err := c.kv.Incr(ctx, roomCacheGenKey); err != nil {
		c.logger.Warn("Occupancy cache generation bump failed", zap.Error(err))
	}
	// 清理旧代号条目；新代号下被误删的条目只是一次未命中
	if _, err := c.kv.DeleteMatching(ctx, roomCachePattern); err != nil {
		c.logger.Warn("Occupancy cache invalidation failed", zap.Error(err))
	}
}
