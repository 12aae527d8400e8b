package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

// HttpRouter serves the operational endpoints outside /api.
type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	if h.deps.Health != nil {
		app.Get("/health", h.deps.Health.HandleHealth)
		app.Get("/health/detailed", h.deps.Health.HandleDetailed)
	}
	if h.deps.Metrics != nil {
		app.Get("/metrics", h.deps.Metrics.Handler())
	}
	if len(h.deps.MonitorUsers) > 0 {
		app.Get("/monitor", basicauth.New(basicauth.Config{
			Users: h.deps.MonitorUsers,
			Realm: "PayFox Monitor",
		}), monitor.New(monitor.Config{Title: "PayFox Monitor"}))
	}
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
