package services

import (
	"context"
	"log/slog"

	"bnbBack/internal/cache"
)

// cached serves key from c when present and otherwise stores the result of load.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	var hit T
	found, err := c.Get(ctx, key, &hit)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "err", err)
	}
	if found {
		return hit, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "err", err)
	}
	return v, nil
}

func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "err", err)
	}
}
