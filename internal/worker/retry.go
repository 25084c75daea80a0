package worker

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryTracker counts failed attempts per message so the loop can park a
// message that keeps failing instead of requeueing it forever.
type RetryTracker interface {
	// Record registers a failed attempt and returns the total so far.
	// A return of 0 means tracking is unavailable for this message; the
	// caller must then keep requeueing rather than park on a guess.
	Record(ctx context.Context, key string) int
	// Reset clears the counter after a successful attempt or a park.
	Reset(ctx context.Context, key string)
}

// redisRetryTracker keeps counters in Redis under short-TTL keys, keyed by
// the intent's idempotency key so every redelivery of the same content
// increments the same counter regardless of which instance sees it.
type redisRetryTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRetryTracker returns a Redis-backed tracker, or a disabled one when
// rdb is nil (Redis unreachable at startup).  Disabled tracking restores
// the original requeue-forever behaviour; it never discards work.
func NewRetryTracker(rdb *redis.Client, ttl time.Duration) RetryTracker {
	if rdb == nil {
		return noopRetryTracker{}
	}
	return &redisRetryTracker{rdb: rdb, ttl: ttl}
}

func (t *redisRetryTracker) Record(ctx context.Context, key string) int {
	rkey := "booking:retries:" + key
	n, err := t.rdb.Incr(ctx, rkey).Result()
	if err != nil {
		log.Printf("retry-tracker: incr %s failed: %v", rkey, err)
		return 0
	}
	if err := t.rdb.Expire(ctx, rkey, t.ttl).Err(); err != nil {
		log.Printf("retry-tracker: expire %s failed: %v", rkey, err)
	}
	return int(n)
}

func (t *redisRetryTracker) Reset(ctx context.Context, key string) {
	if err := t.rdb.Del(ctx, "booking:retries:"+key).Err(); err != nil {
		log.Printf("retry-tracker: del %s failed: %v", key, err)
	}
}

type noopRetryTracker struct{}

func (noopRetryTracker) Record(context.Context, string) int { return 0 }
func (noopRetryTracker) Reset(context.Context, string)      {}
