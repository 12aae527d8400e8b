package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/services"
)

type PaymentProviderController struct {
	providers *services.PaymentProviderService
}

func NewPaymentProviderController(providers *services.PaymentProviderService) *PaymentProviderController {
	return &PaymentProviderController{providers: providers}
}

type providerData struct {
	Provider            *models.PaymentProvider `json:"provider"`
	PaymentMethodsCount *int64                  `json:"paymentMethodsCount,omitempty"`
}

type providersData struct {
	Providers []models.PaymentProvider `json:"providers"`
}

// HandleList serves GET /payment-providers with page, pageSize and activeOnly.
func (pc *PaymentProviderController) HandleList(c *fiber.Ctx) error {
	page, err := pc.providers.List(c.UserContext(), services.ListPaymentProvidersParams{
		PageRequest: pageRequest(c, "pageSize"),
		ActiveOnly:  c.QueryBool("activeOnly", false),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, "Payment providers retrieved successfully", page)
}

func (pc *PaymentProviderController) HandleListActive(c *fiber.Ctx) error {
	providers, err := pc.providers.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Active payment providers retrieved successfully", providersData{Providers: providers})
}

func (pc *PaymentProviderController) HandleGet(c *fiber.Ctx) error {
	provider, err := pc.providers.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	count, err := pc.providers.PaymentMethodsCount(c.UserContext(), provider.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment provider retrieved successfully", providerData{Provider: provider, PaymentMethodsCount: &count})
}

func (pc *PaymentProviderController) HandleCreate(c *fiber.Ctx) error {
	var in services.CreatePaymentProviderInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	provider, err := pc.providers.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "Payment provider created successfully", providerData{Provider: provider})
}

func (pc *PaymentProviderController) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdatePaymentProviderInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	provider, err := pc.providers.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment provider updated successfully", providerData{Provider: provider})
}

// HandleDelete answers 409 while payment methods still reference the provider.
func (pc *PaymentProviderController) HandleDelete(c *fiber.Ctx) error {
	if err := pc.providers.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment provider deleted successfully", nil)
}

func (pc *PaymentProviderController) HandleToggle(c *fiber.Ctx) error {
	provider, err := pc.providers.ToggleActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	message := "Payment provider deactivated successfully"
	if provider.IsActive {
		message = "Payment provider activated successfully"
	}
	return respondSuccess(c, fiber.StatusOK, message, providerData{Provider: provider})
}
