package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/PayFox/internal/pkg/env"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
)

const (
	scanCount       = 500
	deleteBatchSize = 500
)

// RedisCache implements Cache on top of a go-redis client. Values are stored as JSON.
type RedisCache struct {
	client    *redis.Client
	opTimeout time.Duration
	metrics   *metrics.Metrics
}

// NewRedisCache wraps an existing client. opTimeout bounds every round trip; zero disables it.
func NewRedisCache(client *redis.Client, opTimeout time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, opTimeout: opTimeout, metrics: m}
}

// SetupCache builds the client from the CACHE_* environment and checks the connection.
// An unreachable server is only logged: the cache starts degraded and recovers on its own.
func SetupCache(m *metrics.Metrics) *RedisCache {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     env.GetEnv("CACHE_PASSWORD", ""),
		DB:           env.GetEnvInt("CACHE_DB", 0),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	c := NewRedisCache(client, env.GetEnvDuration("CACHE_OP_TIMEOUT", 500*time.Millisecond), m)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if c.Ping(ctx) != OK {
		log.Warnf("[Cache] could not connect to %s, running degraded", client.Options().Addr)
	} else {
		log.Infof("[Cache] connected to %s", client.Options().Addr)
	}
	return c
}

// Client returns the underlying client.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) Status {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return c.record("get", Miss)
	}
	if err != nil {
		log.Warnf("[Cache] get %s failed: %v", key, err)
		return c.record("get", Degraded)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warnf("[Cache] dropping undecodable entry %s: %v", key, err)
		c.client.Del(ctx, key)
		return c.record("get", Miss)
	}
	return c.record("get", OK)
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) Status {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("[Cache] cannot encode value for %s: %v", key, err)
		return c.record("set", Degraded)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warnf("[Cache] set %s failed: %v", key, err)
		return c.record("set", Degraded)
	}
	return c.record("set", OK)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) Status {
	if len(keys) == 0 {
		return OK
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("[Cache] delete %v failed: %v", keys, err)
		return c.record("delete", Degraded)
	}
	return c.record("delete", OK)
}

// DeleteByPrefix removes every key starting with prefix.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) Status {
	return c.deleteMatching(ctx, "delete_prefix", escapePattern(prefix)+"*")
}

// DeleteByPattern removes every key matching the glob pattern.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) Status {
	return c.deleteMatching(ctx, "delete_pattern", pattern)
}

// deleteMatching collects every match with a full SCAN, then deletes them in
// batches. Deleting mid-scan can make servers with offset cursors skip keys.
func (c *RedisCache) deleteMatching(ctx context.Context, op, pattern string) Status {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	var (
		cursor uint64
		keys   []string
		seen   = make(map[string]struct{})
	)
	for {
		found, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			log.Warnf("[Cache] scan %s failed: %v", pattern, err)
			return c.record(op, Degraded)
		}
		for _, k := range found {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	for len(keys) > 0 {
		n := min(len(keys), deleteBatchSize)
		if err := c.client.Del(ctx, keys[:n]...).Err(); err != nil {
			log.Warnf("[Cache] delete %s failed: %v", pattern, err)
			return c.record(op, Degraded)
		}
		keys = keys[n:]
	}
	return c.record(op, OK)
}

func (c *RedisCache) Ping(ctx context.Context) Status {
	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		log.Debugf("[Cache] ping failed: %v", err)
		return c.record("ping", Degraded)
	}
	return c.record("ping", OK)
}

func (c *RedisCache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *RedisCache) record(op string, s Status) Status {
	c.metrics.CacheOperation(op, s.String())
	return s
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapePattern quotes glob metacharacters so the prefix matches literally.
func escapePattern(prefix string) string {
	return patternEscaper.Replace(prefix)
}
