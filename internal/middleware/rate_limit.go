package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// RateLimit builds a per-caller limiter keyed by the authenticated user when
// one is present and by client IP otherwise. Submission intake is the only
// route hot enough to need one.
func RateLimit(name string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			caller := fmt.Sprintf("%v", c.Locals("user_id"))
			if caller == "" || caller == "0" || caller == "<nil>" {
				caller = c.IP()
			}
			return name + ":" + caller
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}
