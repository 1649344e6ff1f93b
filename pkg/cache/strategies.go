package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

const (
	ProductByIDKey = "product:id:%d"
)

const (
	ShortExpiration  = 5 * time.Minute
	MediumExpiration = 30 * time.Minute
)

// CacheManager layers read-through caching over a Cache.
type CacheManager struct {
	cache  Cache
	logger logger.Logger
}

func NewCacheManager(cache Cache, logger logger.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		logger: logger,
	}
}

// ReadThrough fills dest from the cache, or from fetchFunc on a miss and then
// caches the result. The fill only lands if no Invalidate of key happened since
// the miss, so a slow reader never overwrites a newer write with the value it
// fetched before that write. Cache failures never fail the read; fetch errors
// are returned as is and nothing is cached.
func (cm *CacheManager) ReadThrough(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error), expiration time.Duration) error {
	err := cm.cache.Get(ctx, key, dest)
	if err == nil {
		metrics.RecordCacheHit()
		return nil
	}
	metrics.RecordCacheMiss()

	if !errors.Is(err, ErrCacheMiss) {
		cm.logger.WarnContext(ctx, "Read-through cache hatası, kaynaktan okunuyor", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	gen, genErr := cm.cache.Generation(ctx, key)

	data, err := fetchFunc()
	if err != nil {
		return err
	}

	if genErr == nil {
		stored, err := cm.cache.SetIfGeneration(ctx, key, data, expiration, gen)
		switch {
		case err != nil:
			cm.logger.WarnContext(ctx, "Read-through cache yazılamadı", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		case !stored:
			cm.logger.DebugContext(ctx, "Okuma sırasında kayıt değişti, cache doldurulmadı", map[string]interface{}{
				"key": key,
			})
		}
	}

	return copyData(data, dest)
}

// Invalidate drops keys and fences off read-through fills that started before
// it. Failures are logged, stale entries expire with their TTL.
func (cm *CacheManager) Invalidate(ctx context.Context, keys ...string) {
	if err := cm.cache.DeleteMultiple(ctx, keys); err != nil {
		cm.logger.WarnContext(ctx, "Cache geçersiz kılınamadı", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

func (cm *CacheManager) Ping(ctx context.Context) error {
	return cm.cache.Ping(ctx)
}

func ProductCacheKey(productID int64) string {
	return fmt.Sprintf(ProductByIDKey, productID)
}

func copyData(src, dest interface{}) error {
	switch d := dest.(type) {
	case *interface{}:
		*d = src
		return nil
	default:
		data, err := json.Marshal(src)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, dest)
	}
}
