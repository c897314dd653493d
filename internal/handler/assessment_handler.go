package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/dto"
	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/internal/utils"
)

// AssessmentHandler wires assessment endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches assessment endpoints to the router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrObjectiveNeedsAnswer):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to create assessment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create assessment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	assessment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssessmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
		}
		h.logger.Error().Err(err).Uint("assessment_id", id).Msg("failed to load assessment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	assessments, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list assessments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assessments")
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}
