package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// GradingHandler wires the teacher-facing grading endpoints onto the
// submission routes.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the submissions router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/:id/grade", h.gradeSubmission)
	router.Post("/:id/accept-ai", h.acceptAI)
	router.Post("/:id/responses/:responseID/grade", h.gradeResponse)
}

func (h *GradingHandler) gradeSubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.GradeSubmission(c.Context(), id, payload)
	if err != nil {
		return h.sendGradingError(c, id, err, "failed to grade submission")
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *GradingHandler) acceptAI(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.service.AcceptAISuggestions(c.Context(), id)
	if err != nil {
		return h.sendGradingError(c, id, err, "failed to accept ai suggestions")
	}

	return utils.SendSuccess(c, "ai suggestions accepted", submission)
}

func (h *GradingHandler) gradeResponse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	responseID, err := parseUintParam(c, "responseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GradeResponseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.GradeResponse(c.Context(), id, responseID, payload)
	if err != nil {
		return h.sendGradingError(c, id, err, "failed to grade question response")
	}

	return utils.SendSuccess(c, "question response graded", submission)
}

func (h *GradingHandler) sendGradingError(c *fiber.Ctx, submissionID uint, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrResponseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question response not found")
	case errors.Is(err, service.ErrInvalidGradingState):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrScoreExceedsMax):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Uint("submission_id", submissionID).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
