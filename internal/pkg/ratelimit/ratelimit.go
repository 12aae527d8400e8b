package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/PayFox/internal/pkg/env"
)

const (
	DefaultMax    = 100
	DefaultWindow = 15 * time.Minute
	storageDB     = 1
)

type Config struct {
	Max    int
	Window time.Duration
	// Storage keeps counters shared between instances. Nil keeps them in memory.
	Storage fiber.Storage
	// TrustProxy counts requests by the client address reported by proxy headers.
	TrustProxy bool
}

func ConfigFromEnv() Config {
	return Config{
		Max:        env.GetEnvInt("RATE_LIMIT_MAX", DefaultMax),
		Window:     env.GetEnvDuration("RATE_LIMIT_WINDOW", DefaultWindow),
		TrustProxy: env.GetEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

// NewRedisStorage builds limiter storage on the server the cache client talks to,
// using a separate database (cache uses DB 0).
func NewRedisStorage(client *goredis.Client) fiber.Storage {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnvInt("CACHE_PORT", 6379)
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	log.Infof("[RateLimit] using redis storage at %s:%d db %d", host, port, storageDB)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: storageDB,
		Reset:    false,
	})
}

// New limits requests per client IP within a fixed window.
func New(cfg Config) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "ratelimit:" + ClientIP(c, cfg.TrustProxy)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
				"error":   "too_many_requests",
			})
		},
	})
}
