package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/service"
	"github.com/collapp/collapp-api/internal/utils"
)

// SettingsHandler exposes the platform settings endpoints.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register wires settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Put("", h.update)
}

func (h *SettingsHandler) get(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *SettingsHandler) update(c *fiber.Ctx) error {
	var payload dto.SettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	settings, err := h.service.Update(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "settings updated", settings)
}

func (h *SettingsHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
