package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PayFox/app/controllers"
)

// APIServer groups the controllers behind /api/v1
type APIServer struct {
	Users            *controllers.UserController
	PaymentMethods   *controllers.PaymentMethodController
	PaymentProviders *controllers.PaymentProviderController
}

// NewAPIServer creates a new API server instance
func NewAPIServer(users *controllers.UserController, methods *controllers.PaymentMethodController, providers *controllers.PaymentProviderController) *APIServer {
	return &APIServer{
		Users:            users,
		PaymentMethods:   methods,
		PaymentProviders: providers,
	}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

type Pong struct {
	Ping string `json:"ping"`
}

// RegisterHandlers mounts the v1 routes on router. User routes stay open;
// provider and payment method routes require auth, which also resolves the caller.
func RegisterHandlers(router fiber.Router, s *APIServer, auth fiber.Handler) {
	router.Get("/ping", s.GetPing)

	users := router.Group("/users")
	users.Get("/", s.Users.HandleList)
	users.Get("/telp/:telp", s.Users.HandleGetByPhone)
	users.Get("/:id", s.Users.HandleGet)
	users.Post("/", s.Users.HandleCreate)
	users.Put("/:id", s.Users.HandleUpdate)
	users.Delete("/:id", s.Users.HandleDelete)
	users.Post("/:id/api-key", s.Users.HandleIssueAPIKey)

	methods := router.Group("/payment-methods", auth)
	methods.Get("/", s.PaymentMethods.HandleList)
	methods.Get("/active", s.PaymentMethods.HandleListActive)
	methods.Get("/default", s.PaymentMethods.HandleGetDefault)
	methods.Get("/:id", s.PaymentMethods.HandleGet)
	methods.Post("/", s.PaymentMethods.HandleCreate)
	methods.Put("/:id", s.PaymentMethods.HandleUpdate)
	methods.Delete("/:id", s.PaymentMethods.HandleDelete)
	methods.Patch("/:id/set-default", s.PaymentMethods.HandleSetDefault)
	methods.Patch("/:id/deactivate", s.PaymentMethods.HandleDeactivate)

	providers := router.Group("/payment-providers", auth)
	providers.Get("/", s.PaymentProviders.HandleList)
	providers.Get("/active", s.PaymentProviders.HandleListActive)
	providers.Get("/:id", s.PaymentProviders.HandleGet)
	providers.Post("/", s.PaymentProviders.HandleCreate)
	providers.Put("/:id", s.PaymentProviders.HandleUpdate)
	providers.Delete("/:id", s.PaymentProviders.HandleDelete)
	providers.Patch("/:id/toggle", s.PaymentProviders.HandleToggle)
}
