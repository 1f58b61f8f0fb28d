// Copyright (c) 2026 Identra. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/anhtran-dev/identra/internal/platform/constants"
)

// RedisAttemptLimiter implements AttemptLimiter with a fixed-window counter
// per username and IP pair.
//
// The counter is created with the window's TTL on the first failure; further
// failures within the window only increment it. A successful login deletes
// the counter immediately.
type RedisAttemptLimiter struct {
	client *redis.Client
}

// NewRedisAttemptLimiter creates a Redis-backed login throttle.
func NewRedisAttemptLimiter(client *redis.Client) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client}
}

// attemptKey builds the counter key for one username/IP pair.
func attemptKey(username, ip string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixLoginAttempts, username, ip)
}

/*
TooManyFailures reports whether the pair has exhausted its failure budget.

Parameters:
  - context: context.Context
  - username: string
  - ip: string

Returns:
  - bool: true when the current window holds too many failures
  - error: Execution errors (callers should fail open)
*/
func (limiter *RedisAttemptLimiter) TooManyFailures(context context.Context, username, ip string) (bool, error) {
	count, err := limiter.client.Get(context, attemptKey(username, ip)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_login_attempts_get_failed: %w", err)
	}

	return count >= constants.LoginAttemptLimit, nil
}

/*
RecordFailure increments the pair's failure counter.

Description: The window TTL is set only when the key is created, so the
window is anchored at the first failure, not the latest one.

Parameters:
  - context: context.Context
  - username: string
  - ip: string

Returns:
  - error: Execution errors
*/
func (limiter *RedisAttemptLimiter) RecordFailure(context context.Context, username, ip string) error {
	key := attemptKey(username, ip)

	count, err := limiter.client.Incr(context, key).Result()
	if err != nil {
		return fmt.Errorf("redis_login_attempts_incr_failed: %w", err)
	}

	// First failure in a fresh window: arm the expiry.
	if count == 1 {
		if err := limiter.client.Expire(context, key, constants.LoginAttemptWindow).Err(); err != nil {
			return fmt.Errorf("redis_login_attempts_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset clears the pair's failure counter after a successful login.
func (limiter *RedisAttemptLimiter) Reset(context context.Context, username, ip string) error {
	if err := limiter.client.Del(context, attemptKey(username, ip)).Err(); err != nil {
		return fmt.Errorf("redis_login_attempts_reset_failed: %w", err)
	}
	return nil
}
