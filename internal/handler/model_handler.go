package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/service"
	"github.com/gradeflow/gradeflow-api/internal/utils"
	"github.com/gradeflow/gradeflow-api/pkg/ai"
)

// ModelHandler exposes the AI model catalog.
type ModelHandler struct {
	service service.ModelCatalogService
	logger  zerolog.Logger
}

// NewModelHandler constructs the handler.
func NewModelHandler(service service.ModelCatalogService, logger zerolog.Logger) *ModelHandler {
	return &ModelHandler{
		service: service,
		logger:  logger.With().Str("component", "model_handler").Logger(),
	}
}

// Register attaches the catalog endpoint to the router group.
func (h *ModelHandler) Register(router fiber.Router) {
	router.Get("/models", h.list)
}

func (h *ModelHandler) list(c *fiber.Ctx) error {
	catalog, err := h.service.List(c.Context())
	if err != nil {
		var providerErr *ai.ProviderError
		switch {
		case errors.Is(err, service.ErrAIDisabled):
			return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
		case errors.As(err, &providerErr) && providerErr.Kind == ai.KindUnsupported:
			return utils.SendError(c, fiber.StatusNotImplemented, providerErr.Message)
		case errors.As(err, &providerErr):
			return utils.SendError(c, fiber.StatusBadGateway, providerErr.Message)
		default:
			h.logger.Error().Err(err).Msg("failed to list ai models")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list ai models")
		}
	}

	return utils.SendSuccess(c, "models retrieved", catalog)
}
