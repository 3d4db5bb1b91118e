// Package cache stores rendered responses keyed by snapshot version.
package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ValuesKey builds the cache key of one /values response. The snapshot version
// is part of the key so entries never outlive the snapshot they were computed on.
func ValuesKey(snapshotVersion string, pair, day int, unix int64) string {
	return fmt.Sprintf("values:%s:%d:%d:%d", snapshotVersion, pair, day, unix)
}
