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

// CollegeHandler exposes college catalogue and onboarding endpoints.
type CollegeHandler struct {
	service service.CollegeService
	logger  zerolog.Logger
}

// NewCollegeHandler constructs a college handler.
func NewCollegeHandler(service service.CollegeService, logger zerolog.Logger) *CollegeHandler {
	return &CollegeHandler{
		service: service,
		logger:  logger.With().Str("component", "college_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated catalogue routes.
func (h *CollegeHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterRep wires the representative onboarding routes.
func (h *CollegeHandler) RegisterRep(router fiber.Router) {
	router.Get("/me", h.getOwn)
	router.Post("/me/onboarding", h.completeOnboarding)
	router.Post("/me/unpublish", h.unpublish)
}

// RegisterAdmin wires the admin management routes.
func (h *CollegeHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.listAll)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CollegeHandler) list(c *fiber.Ctx) error {
	colleges, err := h.service.List(c.Context(), true)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "colleges retrieved", colleges)
}

func (h *CollegeHandler) listAll(c *fiber.Ctx) error {
	colleges, err := h.service.List(c.Context(), false)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "colleges retrieved", colleges)
}

func (h *CollegeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	college, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "college retrieved", college)
}

func (h *CollegeHandler) getOwn(c *fiber.Ctx) error {
	college, err := h.service.GetByRep(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "college retrieved", college)
}

func (h *CollegeHandler) create(c *fiber.Ctx) error {
	var payload dto.CollegeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	logo, err := c.FormFile("logo")
	if err != nil {
		logo = nil
	}

	college, err := h.service.Create(c.Context(), payload, logo)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "college created", college)
}

func (h *CollegeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CollegeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	logo, err := c.FormFile("logo")
	if err != nil {
		logo = nil
	}

	college, err := h.service.Update(c.Context(), id, payload, logo)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "college updated", college)
}

func (h *CollegeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "college deleted", fiber.Map{"id": id})
}

func (h *CollegeHandler) completeOnboarding(c *fiber.Ctx) error {
	var payload dto.CollegeOnboardingRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form is required")
	}
	brochures := form.File["brochures"]

	college, err := h.service.CompleteOnboarding(c.Context(), userIDFromContext(c), payload, brochures)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "onboarding completed", college)
}

func (h *CollegeHandler) unpublish(c *fiber.Ctx) error {
	college, err := h.service.Unpublish(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "college unpublished", college)
}

func (h *CollegeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrCollegeNotFound),
		errors.Is(err, service.ErrRepCollegeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRepEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooManyBrochures),
		errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
