// Package cache stores fetched price series between requests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache contract shared by the memory, redis and layered
// backends. Values are JSON encoded; Get decodes into dest.
type Service interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// SeriesKey builds the key for a fetched series.
func SeriesKey(provider, symbol, rng, interval string) string {
	return fmt.Sprintf("series:%s:%s:%s:%s", provider, strings.ToUpper(symbol), rng, interval)
}
