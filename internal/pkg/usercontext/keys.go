package usercontext

// Locals keys shared by middleware and controllers
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyRequestID   = "requestid"
)
