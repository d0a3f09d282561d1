package redis

import (
	"context"
	"fmt"
	"time"

	"telegram-menu-builder/internal/domain/ports/adapter"
)

var _ adapter.FloodGuard = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter shared by every process using the
// same Redis database.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// InboundKey scopes the inbound flood window to one end user of one bot.
func InboundKey(botKey string, userID int64) string {
	return fmt.Sprintf("rate_limit:inbound:%s:%d", botKey, userID)
}
