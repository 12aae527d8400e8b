package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PayFox/app/models"
	"github.com/ManuelReschke/PayFox/app/services"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// HandleList serves GET /users with page, pageSize and search.
func (uc *UserController) HandleList(c *fiber.Ctx) error {
	page, err := uc.users.List(c.UserContext(), services.ListUsersParams{
		PageRequest: pageRequest(c, "pageSize"),
		Search:      strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, "Users retrieved successfully", page)
}

func (uc *UserController) HandleGet(c *fiber.Ctx) error {
	user, err := uc.users.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "User retrieved successfully", user)
}

func (uc *UserController) HandleGetByPhone(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Params("telp"))
	if phone == "" {
		return respondFailure(c, fiber.StatusBadRequest, "bad_request", "Phone number is required")
	}
	user, err := uc.users.FindByPhone(c.UserContext(), phone)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "User retrieved successfully", user)
}

func (uc *UserController) HandleCreate(c *fiber.Ctx) error {
	var in services.CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	user, err := uc.users.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "User created successfully", user)
}

func (uc *UserController) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c)
	}
	user, err := uc.users.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "User updated successfully", user)
}

func (uc *UserController) HandleDelete(c *fiber.Ctx) error {
	if err := uc.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "User deleted successfully", nil)
}

type issuedAPIKey struct {
	User   *models.User `json:"user"`
	APIKey string       `json:"apiKey"`
}

// HandleIssueAPIKey replaces the user's API key. The raw key is only returned here.
func (uc *UserController) HandleIssueAPIKey(c *fiber.Ctx) error {
	raw, user, err := uc.users.IssueAPIKey(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "API key issued successfully", issuedAPIKey{User: user, APIKey: raw})
}
