package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gradeflow/gradeflow-api/internal/config"
	"github.com/gradeflow/gradeflow-api/internal/handler"
	"github.com/gradeflow/gradeflow-api/internal/middleware"
	"github.com/gradeflow/gradeflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssessmentHandler *handler.AssessmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	ModelHandler      *handler.ModelHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AssessmentHandler != nil {
		assessments := app.Group("/api/v2/assessments", jwtMiddleware)
		deps.AssessmentHandler.Register(assessments)
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v2/submissions", jwtMiddleware)
		// A student hammering submit mostly burns AI quota, so intake gets its
		// own limiter.
		deps.SubmissionHandler.Register(submissions, middleware.RateLimit("submit", 10, time.Minute))
	}

	if deps.GradingHandler != nil {
		grading := app.Group("/api/v2/submissions", jwtMiddleware, middleware.RequireRole("admin", "teacher"))
		deps.GradingHandler.Register(grading)
	}

	if deps.ModelHandler != nil {
		aiGroup := app.Group("/api/v2/ai", jwtMiddleware)
		deps.ModelHandler.Register(aiGroup)
	}
}
