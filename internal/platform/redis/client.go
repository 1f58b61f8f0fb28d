// Copyright (c) 2026 Identra. All rights reserved.

/*
Package redis bootstraps the Redis client backing Identra's volatile state.

The only Redis consumer today is the login attempt limiter: fixed-window
counters keyed by username and client IP, expiring on their own. Nothing
durable lives here; losing the instance resets throttle windows and nothing
else, which is why callers of the limiter fail open when Redis is down.

The client is constructed once at startup and shared. Connectivity is
verified before the server accepts traffic so a bad REDIS_URL surfaces as a
startup failure, not as a flood of per-request limiter warnings.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection tuning. Limiter lookups sit on the login path, so reads and
// writes get short deadlines; a slow Redis must not slow authentication.
const (
	connPoolSize   = 10
	connMinIdle    = 2
	connMaxIdle    = 5
	connDialWait   = 3 * time.Second
	commandTimeout = 2 * time.Second
	pingTimeout    = 2 * time.Second
)

// NewClient parses REDIS_URL, applies Identra's connection tuning and
// verifies connectivity with a bounded ping before returning the client.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = connPoolSize
	options.MinIdleConns = connMinIdle
	options.MaxIdleConns = connMaxIdle
	options.DialTimeout = connDialWait
	options.ReadTimeout = commandTimeout
	options.WriteTimeout = commandTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies the client within a bounded deadline. The readiness probe
// reuses it, so it must stay cheap and side-effect free.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
