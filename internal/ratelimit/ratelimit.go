// Package ratelimit provides a rolling-window request limiter for the
// unauthenticated learner-code routes. The Redis implementation is
// shared across replicas; the in-memory one serves single-process
// deployments and tests.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
)

// Limiter reports whether a request for the given key is admitted
// within the rolling window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	log    *logger.Logger
}

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, baseLog *logger.Logger) Limiter {
	return &redisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		log:    baseLog.With("service", "RedisLimiter"),
	}
}

func (rl *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key
	windowStart := now.Add(-rl.window)

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	card := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if card.Val() >= int64(rl.limit) {
		return false, nil
	}

	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())
	pipe = rl.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit record failed: %w", err)
	}
	return true, nil
}

type memoryLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		hits:    make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (ml *memoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.nowFunc()
	cutoff := now.Add(-ml.window)

	kept := ml.hits[key][:0]
	for _, t := range ml.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= ml.limit {
		ml.hits[key] = kept
		return false, nil
	}

	ml.hits[key] = append(kept, now)
	return true, nil
}
