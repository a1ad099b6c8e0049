package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const StorefrontCachePrefix = "storefront:slug:"

// CacheManager handles Redis caching for the public catalog reads.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{redis: rdb, ttl: DefaultCacheTTL}
}

// GetStorefront retrieves a cached storefront response.
func (cm *CacheManager) GetStorefront(ctx context.Context, slug string) (map[string]interface{}, bool) {
	cachedData, err := cm.redis.Get(ctx, StorefrontCachePrefix+slug).Result()
	if err != nil {
		return nil, false
	}
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(cachedData), &response); err != nil {
		zap.L().Warn("failed to unmarshal cached storefront", zap.Error(err))
		return nil, false
	}
	return response, true
}

// SetStorefrontAsync caches a storefront response off the request path.
func (cm *CacheManager) SetStorefrontAsync(slug string, response map[string]interface{}) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		data, err := json.Marshal(response)
		if err != nil {
			return
		}
		if err := cm.redis.Set(bgCtx, StorefrontCachePrefix+slug, data, cm.ttl).Err(); err != nil {
			zap.L().Warn("failed to cache storefront", zap.String("slug", slug), zap.Error(err))
		}
	}()
}
