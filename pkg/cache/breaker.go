package cache

import (
	"context"
	"errors"
	"time"

	"storefront/pkg/circuitbreaker"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// BreakerCache short-circuits an unhealthy cache so that requests fall through
// to the database instead of waiting on redis timeouts.
type BreakerCache struct {
	next    Cache
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerCache(next Cache, threshold int, cooldown time.Duration, log logger.Logger) Cache {
	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:      "cache",
		Threshold: threshold,
		Cooldown:  cooldown,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, ErrCacheMiss) && !errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetCircuitState(name, int(to))
			log.Warn("Devre kesici durumu değişti", map[string]interface{}{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})
	metrics.SetCircuitState(breaker.Name(), int(circuitbreaker.StateClosed))

	return &BreakerCache{next: next, breaker: breaker}
}

func (b *BreakerCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return b.breaker.Do(func() error {
		return b.next.Set(ctx, key, value, expiration)
	})
}

func (b *BreakerCache) Get(ctx context.Context, key string, dest interface{}) error {
	return b.breaker.Do(func() error {
		return b.next.Get(ctx, key, dest)
	})
}

func (b *BreakerCache) Generation(ctx context.Context, key string) (int64, error) {
	var gen int64
	err := b.breaker.Do(func() error {
		var err error
		gen, err = b.next.Generation(ctx, key)
		return err
	})
	return gen, err
}

func (b *BreakerCache) SetIfGeneration(ctx context.Context, key string, value interface{}, expiration time.Duration, gen int64) (bool, error) {
	var stored bool
	err := b.breaker.Do(func() error {
		var err error
		stored, err = b.next.SetIfGeneration(ctx, key, value, expiration, gen)
		return err
	})
	return stored, err
}

func (b *BreakerCache) Delete(ctx context.Context, key string) error {
	return b.DeleteMultiple(ctx, []string{key})
}

// DeleteMultiple always reaches the backend; skipping an invalidation would
// leave stale entries behind after the breaker closes.
func (b *BreakerCache) DeleteMultiple(ctx context.Context, keys []string) error {
	return b.next.DeleteMultiple(ctx, keys)
}

func (b *BreakerCache) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerCache) State() circuitbreaker.State {
	return b.breaker.State()
}
