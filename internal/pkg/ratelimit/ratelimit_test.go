package ratelimit

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestLimiterBlocksAfterMax(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{Max: 2, Window: time.Minute}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	assert.Equal(t, fiber.StatusNoContent, hit(t, app))
	assert.Equal(t, fiber.StatusNoContent, hit(t, app))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestLimiterWithRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := NewRedisStorage(client)
	app := fiber.New()
	app.Use(New(Config{Max: 1, Window: time.Minute, Storage: storage}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	assert.Equal(t, fiber.StatusNoContent, hit(t, app))
	assert.Equal(t, fiber.StatusTooManyRequests, hit(t, app))

	mr.Select(storageDB)
	assert.NotEmpty(t, mr.Keys(), "counters live in the limiter database")
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.Equal(t, DefaultMax, cfg.Max)
	assert.Equal(t, DefaultWindow, cfg.Window)
	assert.Nil(t, cfg.Storage)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "connection address", want: "0.0.0.0"},
		{name: "headers ignored without trust", headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}, want: "0.0.0.0"},
		{name: "cloudflare first", headers: map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "203.0.113.7"}, trustProxy: true, want: "198.51.100.1"},
		{name: "first forwarded entry", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, trustProxy: true, want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "2001:db8::1"}, trustProxy: true, want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return c.SendString(ClientIP(c, tt.trustProxy))
			})
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
