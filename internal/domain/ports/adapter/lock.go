package adapter

import (
	"context"
	"time"
)

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// FloodGuard is a fixed-window counter: Allow reports whether key is still
// under limit within the current window.
type FloodGuard interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
