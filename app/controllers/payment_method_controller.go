package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/services"
	"github.com/ManuelReschke/PayFox/internal/pkg/usercontext"
)

// PaymentMethodController serves the payment methods of the API key owner.
type PaymentMethodController struct {
	methods *services.PaymentMethodService
}

func NewPaymentMethodController(methods *services.PaymentMethodService) *PaymentMethodController {
	return &PaymentMethodController{methods: methods}
}

type paymentMethodData struct {
	PaymentMethod *models.PaymentMethod `json:"paymentMethod"`
}

type paymentMethodsData struct {
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
}

// HandleList serves GET /payment-methods with page, limit, type, isActive and providerId.
func (pc *PaymentMethodController) HandleList(c *fiber.Ctx) error {
	isActive, err := optionalBool(c, "isActive")
	if err != nil {
		return respondError(c, err)
	}
	page, err := pc.methods.List(c.UserContext(), usercontext.GetUserID(c), services.ListPaymentMethodsParams{
		PageRequest: pageRequest(c, "limit"),
		Type:        models.PaymentMethodType(c.Query("type")),
		IsActive:    isActive,
		ProviderID:  c.Query("providerId"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, "Payment methods retrieved successfully", page)
}

func (pc *PaymentMethodController) HandleListActive(c *fiber.Ctx) error {
	methods, err := pc.methods.ListActive(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Active payment methods retrieved successfully", paymentMethodsData{PaymentMethods: methods})
}

func (pc *PaymentMethodController) HandleGetDefault(c *fiber.Ctx) error {
	method, err := pc.methods.GetDefault(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Default payment method retrieved successfully", paymentMethodData{PaymentMethod: method})
}

func (pc *PaymentMethodController) HandleGet(c *fiber.Ctx) error {
	method, err := pc.methods.FindByIDForUser(c.UserContext(), c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment method retrieved successfully", paymentMethodData{PaymentMethod: method})
}

func (pc *PaymentMethodController) HandleCreate(c *fiber.Ctx) error {
	var in services.CreatePaymentMethodInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	method, err := pc.methods.Create(c.UserContext(), usercontext.GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "Payment method created successfully", paymentMethodData{PaymentMethod: method})
}

func (pc *PaymentMethodController) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdatePaymentMethodInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	method, err := pc.methods.Update(c.UserContext(), c.Params("id"), usercontext.GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment method updated successfully", paymentMethodData{PaymentMethod: method})
}

func (pc *PaymentMethodController) HandleDelete(c *fiber.Ctx) error {
	if err := pc.methods.Delete(c.UserContext(), c.Params("id"), usercontext.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment method deleted successfully", nil)
}

func (pc *PaymentMethodController) HandleSetDefault(c *fiber.Ctx) error {
	method, err := pc.methods.SetDefault(c.UserContext(), c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment method set as default successfully", paymentMethodData{PaymentMethod: method})
}

func (pc *PaymentMethodController) HandleDeactivate(c *fiber.Ctx) error {
	method, err := pc.methods.Deactivate(c.UserContext(), c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Payment method deactivated successfully", paymentMethodData{PaymentMethod: method})
}
