package cache

import (
	"context"
	"time"
)

// Status reports how a cache operation ended. Callers treat Degraded exactly
// like Miss; it only exists so the state of the cache is observable.
type Status int

const (
	OK Status = iota
	Miss
	Degraded
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Miss:
		return "miss"
	default:
		return "degraded"
	}
}

// Cache is a best-effort look-aside cache. No method returns an error: a
// failing cache server turns every operation into Degraded and the caller
// falls through to the store.
type Cache interface {
	// Get decodes the value stored under key into dest. OK means dest was filled.
	Get(ctx context.Context, key string, dest any) Status
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) Status
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) Status
	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) Status
	// DeleteByPattern removes every key matching a glob pattern such as "user:*:payment-methods".
	DeleteByPattern(ctx context.Context, pattern string) Status
	// Ping checks connectivity.
	Ping(ctx context.Context) Status
}

// NopCache is used when caching is disabled. Reads always miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) Status                { return Miss }
func (NopCache) Set(context.Context, string, any, time.Duration) Status { return OK }
func (NopCache) Delete(context.Context, ...string) Status               { return OK }
func (NopCache) DeleteByPrefix(context.Context, string) Status          { return OK }
func (NopCache) DeleteByPattern(context.Context, string) Status         { return OK }
func (NopCache) Ping(context.Context) Status                            { return OK }
