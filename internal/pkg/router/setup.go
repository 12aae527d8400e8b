package router

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ManuelReschke/PayFox/app/controllers"
	"github.com/ManuelReschke/PayFox/app/services"
	"github.com/ManuelReschke/PayFox/internal/pkg/metrics"
	"github.com/ManuelReschke/PayFox/internal/pkg/middleware"
	"github.com/ManuelReschke/PayFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/PayFox/internal/pkg/usercontext"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the constructed components the routes are served by.
type Dependencies struct {
	Users     *services.UserService
	Providers *services.PaymentProviderService
	Methods   *services.PaymentMethodService
	Health    *controllers.HealthController
	Metrics   *metrics.Metrics

	RateLimit      ratelimit.Config
	RequestTimeout time.Duration
	AllowedOrigins string
	// MonitorUsers guards /monitor with basic auth. Empty disables the monitor.
	MonitorUsers map[string]string
	// DocsFile is the OpenAPI document served under /docs/api/v1. Empty disables it.
	DocsFile string
	// AccessLog enables the request logger.
	AccessLog bool
}

// NewApplication builds the fiber app with the global middleware chain and all routes.
func NewApplication(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "PayFox",
		BodyLimit:    1 << 20,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New(), requestid.New(requestid.Config{ContextKey: usercontext.KeyRequestID}))
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} ${path}\n",
		}))
	}
	app.Use(helmet.New(), cors.New(cors.Config{
		AllowOrigins: deps.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(deps.Metrics.Middleware(), middleware.RequestTimeout(deps.RequestTimeout))

	if deps.DocsFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: deps.DocsFile,
			Path:     "v1",
			Title:    "PayFox API",
		}))
	}

	InstallRouter(app, deps)
	return app
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// errorHandler answers errors that escape the handlers in the API envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		if code == fiber.StatusNotFound {
			message = "Route not found"
		}
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("[HTTP] %s %s (request %s): %v", c.Method(), c.Path(), usercontext.GetRequestID(c), err)
	}
	return c.Status(code).JSON(controllers.Response{Success: false, Message: message, Error: errorCode(code)})
}

func errorCode(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "request_too_large"
	case fiber.StatusBadRequest:
		return "bad_request"
	default:
		if code >= fiber.StatusInternalServerError {
			return "internal_server_error"
		}
		return "error"
	}
}
