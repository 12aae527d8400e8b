package controllers

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/database"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
)

// HealthController reports store and cache reachability. Only the store decides
// health; a degraded cache still serves requests.
type HealthController struct {
	db          *gorm.DB
	cache       cache.Cache
	metrics     *metrics.Metrics
	version     string
	environment string
	startedAt   time.Time
}

func NewHealthController(db *gorm.DB, c cache.Cache, m *metrics.Metrics, version, environment string) *HealthController {
	return &HealthController{
		db:          db,
		cache:       c,
		metrics:     m,
		version:     version,
		environment: environment,
		startedAt:   time.Now(),
	}
}

func (hc *HealthController) HandleHealth(c *fiber.Ctx) error {
	dbErr := database.Ping(c.UserContext(), hc.db)
	cacheStatus := hc.cache.Ping(c.UserContext())
	hc.record(dbErr == nil, cacheStatus)

	if dbErr != nil {
		log.Warnf("[Health] database unreachable: %v", dbErr)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     "Database connection failed",
			"database":  "disconnected",
			"cache":     cacheState(cacheStatus),
		})
	}
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(hc.startedAt).Seconds(),
		"environment": hc.environment,
		"version":     hc.version,
		"database":    "connected",
		"cache":       cacheState(cacheStatus),
	})
}

func (hc *HealthController) HandleDetailed(c *fiber.Ctx) error {
	start := time.Now()
	dbErr := database.Ping(c.UserContext(), hc.db)
	dbElapsed := time.Since(start)

	start = time.Now()
	cacheStatus := hc.cache.Ping(c.UserContext())
	cacheElapsed := time.Since(start)
	hc.record(dbErr == nil, cacheStatus)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	system := fiber.Map{
		"goVersion":  runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"uptime":     time.Since(hc.startedAt).Seconds(),
		"memoryUsage": fiber.Map{
			"heapAlloc": megabytes(mem.HeapAlloc),
			"heapSys":   megabytes(mem.HeapSys),
			"sys":       megabytes(mem.Sys),
		},
	}
	cacheInfo := fiber.Map{"status": cacheState(cacheStatus), "responseTime": cacheElapsed.Milliseconds()}

	if dbErr != nil {
		log.Warnf("[Health] database unreachable: %v", dbErr)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     "Health check failed",
			"database":  fiber.Map{"status": "disconnected"},
			"cache":     cacheInfo,
			"system":    system,
		})
	}
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": hc.environment,
		"version":     hc.version,
		"database":    fiber.Map{"status": "connected", "responseTime": dbElapsed.Milliseconds()},
		"cache":       cacheInfo,
		"system":      system,
	})
}

func (hc *HealthController) record(dbUp bool, cacheStatus cache.Status) {
	hc.metrics.HealthStatus("database", dbUp)
	hc.metrics.HealthStatus("cache", cacheStatus == cache.OK)
}

func cacheState(s cache.Status) string {
	if s == cache.OK {
		return "connected"
	}
	return "degraded"
}

func megabytes(b uint64) uint64 {
	return b / 1024 / 1024
}
