package middleware

import (
	"context"

	"task-management/internal/api/response"
	"task-management/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserKey is the fiber Locals key holding the authenticated models.User.
const UserKey = "user"

// UserResolver is satisfied by *service.Resolver.
type UserResolver interface {
	Resolve(ctx context.Context, authorization string) (models.User, error)
}

// RequireAuth resolves the Authorization header and stores the caller under
// UserKey, or answers 401.
func RequireAuth(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return response.Error(c, err)
		}
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(UserKey).(models.User)
	return user, ok
}
