package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateRepo counts events in fixed windows keyed per user and surface. Each
// key lives exactly one window, so a counter resets by expiring rather than
// by an explicit delete.
type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// IncrementWindow bumps the window counter and returns the new count with
// the window's remaining lifetime. INCR, EXPIRE NX and TTL ride one
// pipeline, and EXPIRE NX arms the window on whichever increment lands
// first without shortening it afterwards.
func (r *RateRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("increment rate window %q: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = 0
	}

	return incr.Val(), remaining, nil
}
