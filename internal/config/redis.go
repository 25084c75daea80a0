package config

// Redis backs the per-message redelivery counter that decides when a
// failing message is parked instead of requeued.  If the connection fails
// at startup the constructor returns nil and the worker degrades to the
// original requeue-indefinitely behaviour.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from REDIS_ADDR (host:port,
// default localhost:6379), REDIS_PASSWORD and REDIS_DB.  The returned
// client may be nil if the server cannot be reached.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       intOr("REDIS_DB", 0),
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
