package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/app/controllers"
	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/app/services"
	"github.com/ManuelReschke/PayFox/internal/pkg/apidoc"
	"github.com/ManuelReschke/PayFox/internal/pkg/cache"
	"github.com/ManuelReschke/PayFox/internal/pkg/database"
	"github.com/ManuelReschke/PayFox/internal/pkg/env"
	"github.com/ManuelReschke/PayFox/internal/pkg/gateway"
	"github.com/ManuelReschke/PayFox/internal/pkg/logging"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
	"github.com/ManuelReschke/PayFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/PayFox/internal/pkg/router"
)

const version = "1.0.0"

func main() {
	env.SetupEnvFile()
	logging.Setup()

	app, cleanup, err := NewApplication()
	if err != nil {
		log.Fatalf("[PayFox] startup failed: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Errorf("[PayFox] listener stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("[PayFox] received %s, shutting down", sig)

	if err := app.ShutdownWithTimeout(env.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)); err != nil {
		log.Errorf("[PayFox] graceful shutdown failed: %v", err)
	}
	cleanup()
	log.Info("[PayFox] stopped")
}

// NewApplication wires store, cache, services and routes. cleanup releases the
// connections once the server has stopped.
func NewApplication() (*fiber.App, func(), error) {
	m := metrics.New()

	db, err := database.SetupDatabase(database.ConfigFromEnv())
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}

	var (
		c            cache.Cache = cache.NopCache{}
		redisCache   *cache.RedisCache
		limitStorage fiber.Storage
	)
	if env.GetEnvBool("CACHE_ENABLED", true) {
		redisCache = cache.SetupCache(m)
		c = redisCache
		if redisCache.Ping(context.Background()) == cache.OK {
			limitStorage = ratelimit.NewRedisStorage(redisCache.Client())
		} else {
			log.Warn("[PayFox] rate limiter falls back to in-memory counters")
		}
	} else {
		log.Info("[PayFox] cache disabled")
	}

	repos := repository.NewFactory(db)
	users := services.NewUserService(repos.GetUserRepository(), c)
	providers := services.NewPaymentProviderService(repos.GetPaymentProviderRepository(), c, m)
	gateways := gateway.NewRegistry(providers, m)
	providers.AttachGateways(gateways)
	methods := services.NewPaymentMethodService(repos.GetPaymentMethodRepository(), providers, c, gateways)

	docsFile := env.GetEnv("DOCS_FILE", apidoc.DefaultPath)
	if _, err := apidoc.Load(context.Background(), docsFile); err != nil {
		log.Warnf("[PayFox] API docs disabled: %v", err)
		docsFile = ""
	}

	rateLimit := ratelimit.ConfigFromEnv()
	rateLimit.Storage = limitStorage

	environment := env.GetEnv("APP_ENV", "prod")
	app := router.NewApplication(router.Dependencies{
		Users:          users,
		Providers:      providers,
		Methods:        methods,
		Health:         controllers.NewHealthController(db, c, m, version, environment),
		Metrics:        m,
		RateLimit:      rateLimit,
		RequestTimeout: env.GetEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		AllowedOrigins: env.GetEnv("ALLOWED_ORIGINS", "*"),
		MonitorUsers:   monitorUsers(),
		DocsFile:       docsFile,
		AccessLog:      true,
	})

	cleanup := func() {
		if limitStorage != nil {
			if err := limitStorage.Close(); err != nil {
				log.Warnf("[PayFox] closing rate limit storage: %v", err)
			}
		}
		if redisCache != nil {
			if err := redisCache.Close(); err != nil {
				log.Warnf("[PayFox] closing cache: %v", err)
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warnf("[PayFox] closing database: %v", err)
			}
		}
	}
	return app, cleanup, nil
}

// monitorUsers enables /monitor only when credentials are configured.
func monitorUsers() map[string]string {
	user := env.GetEnv("MONITOR_USER", "")
	password := env.GetEnv("MONITOR_PASSWORD", "")
	if user == "" || password == "" {
		return nil
	}
	return map[string]string{user: password}
}
