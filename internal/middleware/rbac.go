package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// RequireRole guards a route group so only callers holding one of the given
// roles pass. The grading surface uses it to keep students out of the
// teacher-only override endpoints.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRoleString(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := callerRole(c)
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// callerRole reads the role the JWT middleware stashed on the request.
func callerRole(c *fiber.Ctx) string {
	value := c.Locals("user_role")
	if value == nil {
		return ""
	}
	if role, ok := value.(string); ok {
		return normalizeRoleString(role)
	}
	return normalizeRoleString(fmt.Sprintf("%v", value))
}

func normalizeRoleString(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
