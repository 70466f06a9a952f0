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

// AdminHandler exposes account management and dashboard endpoints.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/users", h.listUsers)
	router.Put("/users/:id", h.updateUser)
	router.Delete("/users/:id", h.deleteUser)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard stats retrieved", stats)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AdminHandler) updateUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	user, err := h.service.UpdateUser(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteUser(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProtectedAccount):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
