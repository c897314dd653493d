package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// SubmissionHandler wires submission intake and read endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group. submitLimiter
// guards the intake endpoint only and may be nil.
func (h *SubmissionHandler) Register(router fiber.Router, submitLimiter fiber.Handler) {
	if submitLimiter != nil {
		router.Post("/", submitLimiter, h.submit)
	} else {
		router.Post("/", h.submit)
	}
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("assessment_id", payload.AssessmentID).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to process submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		h.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to load submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{Status: queryStringPtr(c, "status")}

	var err error
	if filter.AssessmentID, err = queryUintPtr(c, "assessment_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment_id filter")
	}
	if filter.StudentID, err = queryUintPtr(c, "student_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id filter")
	}
	if filter.NeedsReview, err = queryBoolPtr(c, "needs_review"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid needs_review filter")
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to list submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}
