package keygate

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// RequireRole gates a route on an exact role. It runs after the Access Gate,
// loads the user record fresh on every request so role changes apply
// immediately, and fails closed: a vanished user is unauthorized, a live user
// with the wrong role is forbidden.
func RequireRole(users Users, role UserRole, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(c *fiber.Ctx) error {
		userID, ok := UserIDFromContext(c.UserContext())
		if !ok {
			return ErrMissingToken
		}

		user, err := resolveUser(c.UserContext(), users, userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrMissingToken
			}
			return err
		}

		if user.Role != role {
			logger.Warn("RBAC forbidden",
				"user_id", userID,
				"required_role", role,
				"path", c.Path(),
				"method", c.Method(),
			)
			return ErrForbidden
		}

		Trace(c, "RBAC success")
		return c.Next()
	}
}
