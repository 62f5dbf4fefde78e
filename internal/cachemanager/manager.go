// Package cachemanager holds the generic caches that sit in front of
// decoration results. The engine keys rendered documents by a digest of
// their text and options so repeated renders of an unchanged buffer are
// served from memory.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed cache with per-entry expiry.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Stats counts lookups served by a cache.
type Stats struct {
	Hits   uint64
	Misses uint64
	Items  int
}
