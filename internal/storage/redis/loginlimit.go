package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptsKeyPrefix = "loginlimit:attempts:"
	blockKeyPrefix    = "loginlimit:block:"
)

// LoginLimiter counts failed login attempts per client key and blocks the
// key once the configured limit is exceeded.
type LoginLimiter struct {
	client    *redis.Client
	limit     int
	interval  time.Duration
	blockTime time.Duration
}

func NewLoginLimiter(client *redis.Client, limit int, interval, blockTime time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:    client,
		limit:     limit,
		interval:  interval,
		blockTime: blockTime,
	}
}

func (l *LoginLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	_, err := l.client.Get(ctx, blockKeyPrefix+key).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("check login block: %w", err)
	}
	return true, nil
}

// RegisterFailure bumps the failure counter; the counter expires after the
// configured interval, so sparse failures never accumulate into a block.
func (l *LoginLimiter) RegisterFailure(ctx context.Context, key string) error {
	attemptsKey := attemptsKeyPrefix + key

	count, err := l.client.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return fmt.Errorf("increment login attempts: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, attemptsKey, l.interval).Err(); err != nil {
			return fmt.Errorf("expire login attempts: %w", err)
		}
	}

	if count >= int64(l.limit) {
		if err := l.client.Set(ctx, blockKeyPrefix+key, "blocked", l.blockTime).Err(); err != nil {
			return fmt.Errorf("set login block: %w", err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, attemptsKeyPrefix+key, blockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}
