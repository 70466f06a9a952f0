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

// StudentHandler exposes student profile and onboarding endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires student profile routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Post("/onboarding", h.completeOnboarding)
	router.Put("/profile/picture", h.updatePicture)
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *StudentHandler) completeOnboarding(c *fiber.Ctx) error {
	var payload dto.OnboardingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	birthCertificate, err := c.FormFile("birth_certificate")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "birth certificate file is required")
	}
	schoolID, err := c.FormFile("school_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "school id file is required")
	}

	profile, err := h.service.CompleteOnboarding(c.Context(), userIDFromContext(c), payload, birthCertificate, schoolID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "onboarding completed", profile)
}

func (h *StudentHandler) updatePicture(c *fiber.Ctx) error {
	picture, err := c.FormFile("picture")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "picture file is required")
	}

	result, err := h.service.UpdateProfilePicture(c.Context(), userIDFromContext(c), picture)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile picture updated", result)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
