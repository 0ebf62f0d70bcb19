package cache

import (
	"context"
	"time"
)

// Post rows are never cached: a detail read increments the view counter, so
// serving it from cache would silently stop counting. Categories are immutable
// reference data and cache safely.
const (
	CategoriesListKey = "categories"
	CategoriesTTL     = 30 * time.Minute
)

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
