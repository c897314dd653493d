package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// JWTProtected validates bearer tokens and stashes user_id and user_role on
// the request for the role guard and the rate limiter key.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID, ok := claimUserID(claims); ok {
			c.Locals("user_id", userID)
		}
		if role := claimRole(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// claimUserID accepts the subject under any of the claim names the auth
// services in the wild emit, as a number or a numeric string.
func claimUserID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				return uint(parsed), true
			}
		}
	}
	return 0, false
}

// claimRole returns the first non-empty role, whether the claim is a single
// string or a list.
func claimRole(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := normalizeRoleString(v); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					if role := normalizeRoleString(str); role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}
