package controllers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PayFox/app/repository"
	"github.com/ManuelReschke/PayFox/app/services"
	"github.com/ManuelReschke/PayFox/internal/pkg/usercontext"
)

// Response is the envelope of every API answer.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     any         `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func respondSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func respondPage[T any](c *fiber.Ctx, message string, page *repository.Page[T]) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    items,
		Pagination: &Pagination{
			Page:  page.Page,
			Limit: page.PageSize,
			Total: page.Total,
			Pages: page.Pages,
		},
	})
}

func respondFailure(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message, Error: code})
}

// respondError maps service error kinds to HTTP statuses. Anything unexpected is
// logged and answered without details.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status, code := statusFor(svcErr.Kind)
		return c.Status(status).JSON(Response{
			Success: false,
			Message: svcErr.Message,
			Error:   code,
			Errors:  svcErr.Fields,
		})
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warnf("[API] %s %s (request %s) timed out: %v", c.Method(), c.Path(), usercontext.GetRequestID(c), err)
		return respondFailure(c, fiber.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
	}

	log.Errorf("[API] %s %s (request %s) failed: %v", c.Method(), c.Path(), usercontext.GetRequestID(c), err)
	return respondFailure(c, fiber.StatusInternalServerError, "internal_server_error", "Internal server error")
}

func statusFor(kind error) (int, string) {
	switch {
	case errors.Is(kind, services.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(kind, services.ErrConflict):
		return fiber.StatusConflict, "conflict"
	case errors.Is(kind, services.ErrInvalidInput):
		return fiber.StatusBadRequest, "bad_request"
	default:
		return fiber.StatusInternalServerError, "internal_server_error"
	}
}

func respondBadBody(c *fiber.Ctx) error {
	return respondFailure(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
}

// pageRequest reads the page number and the page size from the query.
// sizeParam differs per resource ("limit" or "pageSize").
func pageRequest(c *fiber.Ctx, sizeParam string) repository.PageRequest {
	return repository.PageRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt(sizeParam, repository.DefaultPageSize),
	}
}

// optionalBool parses a boolean query parameter; absent yields nil.
func optionalBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, services.InvalidInputWithFields("Invalid value for "+name, map[string]string{name: "must be true or false"})
	}
	return &v, nil
}
