package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the caller resolved from the API key of a request
type UserContext struct {
	UserID     string `json:"userId"`
	Name       string `json:"nama"`
	Phone      string `json:"telp"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// SetUserContext stores the authenticated caller on the request
func SetUserContext(c *fiber.Ctx, userCtx UserContext) {
	c.Locals(KeyUserContext, userCtx)
	c.Locals(KeyUserID, userCtx.UserID)
}

// IsLoggedIn checks if the request carried a valid API key
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetRequestID returns the id the requestid middleware stored under KeyRequestID
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(KeyRequestID).(string)
	return id
}

// GetUserID returns the current user's ID, or an empty string if not authenticated
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
