package handler

import (
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/service"
	"github.com/collapp/collapp-api/internal/utils"
)

// ApplicationHandler exposes the application lifecycle endpoints.
type ApplicationHandler struct {
	service service.ApplicationService
	logger  zerolog.Logger
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(service service.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		logger:  logger.With().Str("component", "application_handler").Logger(),
	}
}

// RegisterStudent wires the applicant-facing routes.
func (h *ApplicationHandler) RegisterStudent(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.listOwn)
	router.Get("/college/:collegeID/status", h.hasApplied)
	router.Get("/:id", h.get)
	router.Post("/:id/documents/:documentID/resubmit", h.resubmit)
}

// RegisterReview wires the reviewer-facing routes.
func (h *ApplicationHandler) RegisterReview(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id/documents/:documentID", h.updateDocument)
	router.Patch("/:id/documents", h.batchUpdateDocuments)
	router.Post("/:id/decision", h.decide)
}

func (h *ApplicationHandler) submit(c *fiber.Ctx) error {
	var payload dto.ApplicationSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form is required")
	}

	files := make(map[string]*multipart.FileHeader, len(form.File))
	for key, headers := range form.File {
		if len(headers) > 0 {
			files[key] = headers[0]
		}
	}

	application, err := h.service.Submit(c.Context(), userIDFromContext(c), payload, files)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", application)
}

func (h *ApplicationHandler) list(c *fiber.Ctx) error {
	filter, err := parseApplicationFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	applications, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "applications retrieved", applications)
}

func (h *ApplicationHandler) listOwn(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	filter := dto.ApplicationFilter{StudentID: &studentID}

	applications, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "applications retrieved", applications)
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	application, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	// Students may only read their own applications.
	if userRoleFromContext(c) == models.RoleStudent && application.StudentID != userIDFromContext(c) {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	return utils.SendSuccess(c, "application retrieved", application)
}

func (h *ApplicationHandler) hasApplied(c *fiber.Ctx) error {
	collegeID, err := parseUintParam(c, "collegeID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	applied, err := h.service.HasApplied(c.Context(), userIDFromContext(c), collegeID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "application status retrieved", fiber.Map{"applied": applied})
}

func (h *ApplicationHandler) updateDocument(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	documentID := c.Params("documentID")

	var payload dto.DocumentStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	application, err := h.service.UpdateDocumentStatus(c.Context(), id, documentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document status updated", application)
}

func (h *ApplicationHandler) batchUpdateDocuments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DocumentBatchUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	application, err := h.service.BatchUpdateDocuments(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document statuses updated", application)
}

func (h *ApplicationHandler) resubmit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	documentID := c.Params("documentID")

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "replacement file is required")
	}

	application, err := h.service.Resubmit(c.Context(), userIDFromContext(c), id, documentID, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document resubmitted", application)
}

func (h *ApplicationHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApplicationDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	application, err := h.service.Decide(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "decision recorded", application)
}

func (h *ApplicationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var missingDocuments *service.MissingDocumentsError
	var decisionBlocked *service.DecisionBlockedError

	switch {
	case errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrCollegeNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotApplicationOwner):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrApplicationDecided),
		errors.Is(err, service.ErrResubmitNotRequested),
		errors.Is(err, service.ErrApplicationConflict),
		errors.Is(err, service.ErrAlreadyApplied):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrApplicationsClosed),
		errors.Is(err, service.ErrCollegeUnpublished),
		errors.Is(err, service.ErrProgramNotOffered),
		errors.Is(err, service.ErrDuplicateProgramChoice),
		errors.Is(err, service.ErrFinalProgramRequired),
		errors.Is(err, service.ErrFinalProgramNotChosen),
		errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &missingDocuments):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &decisionBlocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseApplicationFilter(c *fiber.Ctx) (dto.ApplicationFilter, error) {
	var filter dto.ApplicationFilter

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return filter, errors.New("invalid student_id")
	}
	collegeID, err := parseQueryUint(c, "college_id")
	if err != nil {
		return filter, errors.New("invalid college_id")
	}
	filter.StudentID = studentID
	filter.CollegeID = collegeID

	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	return filter, nil
}
