package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/observability"
	"github.com/collapp/collapp-api/internal/repository"
)

var (
	// ErrApplicationNotFound indicates an application could not be found.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrCollegeNotFound indicates a college could not be found.
	ErrCollegeNotFound = errors.New("college not found")
	// ErrCollegeUnpublished indicates the college is not accepting applications.
	ErrCollegeUnpublished = errors.New("college is not accepting applications")
	// ErrDocumentNotFound indicates the referenced document is not part of the application.
	ErrDocumentNotFound = errors.New("document not found in application")
	// ErrApplicationDecided indicates the application already reached a terminal state.
	ErrApplicationDecided = errors.New("application has already been decided")
	// ErrResubmitNotRequested indicates a resubmission was attempted without a reviewer request.
	ErrResubmitNotRequested = errors.New("document is not awaiting resubmission")
	// ErrApplicationConflict indicates a concurrent write invalidated the read state.
	ErrApplicationConflict = errors.New("application was modified concurrently, refresh and retry")
	// ErrAlreadyApplied indicates the student already has an application for this college.
	ErrAlreadyApplied = errors.New("an application for this college already exists")
	// ErrApplicationsClosed indicates the platform is not accepting submissions.
	ErrApplicationsClosed = errors.New("applications are currently closed")
	// ErrNotApplicationOwner indicates the acting student does not own the application.
	ErrNotApplicationOwner = errors.New("application belongs to another student")
	// ErrProgramNotOffered indicates a chosen program is not published by the college.
	ErrProgramNotOffered = errors.New("chosen program is not offered by this college")
	// ErrDuplicateProgramChoice indicates the second choice repeats the first.
	ErrDuplicateProgramChoice = errors.New("second choice program must differ from the first")
	// ErrFinalProgramRequired indicates an acceptance without a final program.
	ErrFinalProgramRequired = errors.New("final program is required when accepting an application")
	// ErrFinalProgramNotChosen indicates the final program is not one of the applicant's choices.
	ErrFinalProgramNotChosen = errors.New("final program must be one of the applicant's chosen programs")
)

// MissingDocumentsError reports the requirements lacking an uploaded file.
type MissingDocumentsError struct {
	Labels []string
}

func (e *MissingDocumentsError) Error() string {
	return fmt.Sprintf("missing required documents: %s", strings.Join(e.Labels, ", "))
}

// DecisionBlockedError reports the documents preventing an acceptance.
type DecisionBlockedError struct {
	Labels []string
}

func (e *DecisionBlockedError) Error() string {
	return fmt.Sprintf("documents not yet accepted: %s", strings.Join(e.Labels, ", "))
}

// ApplicationService orchestrates the application lifecycle: submission,
// per-document review, resubmission and the final decision.
type ApplicationService interface {
	Submit(ctx context.Context, studentID uint, payload dto.ApplicationSubmitRequest, files map[string]*multipart.FileHeader) (dto.ApplicationResponse, error)
	List(ctx context.Context, filter dto.ApplicationFilter) ([]dto.ApplicationResponse, error)
	Get(ctx context.Context, id uint) (dto.ApplicationResponse, error)
	HasApplied(ctx context.Context, studentID, collegeID uint) (bool, error)
	UpdateDocumentStatus(ctx context.Context, applicationID uint, documentID string, payload dto.DocumentStatusUpdateRequest) (dto.ApplicationResponse, error)
	BatchUpdateDocuments(ctx context.Context, applicationID uint, payload dto.DocumentBatchUpdateRequest) (dto.ApplicationResponse, error)
	Resubmit(ctx context.Context, studentID, applicationID uint, documentID string, file *multipart.FileHeader) (dto.ApplicationResponse, error)
	Decide(ctx context.Context, applicationID uint, payload dto.ApplicationDecisionRequest) (dto.ApplicationResponse, error)
}

type applicationService struct {
	applications repository.ApplicationRepository
	colleges     repository.CollegeRepository
	users        repository.UserRepository
	settings     repository.SettingsRepository
	storage      FileStorage
	notifier     StudentNotifier
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(
	applications repository.ApplicationRepository,
	colleges repository.CollegeRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	storage FileStorage,
	notifier StudentNotifier,
	validate *validator.Validate,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationService{
		applications: applications,
		colleges:     colleges,
		users:        users,
		settings:     settings,
		storage:      storage,
		notifier:     notifier,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "application_service").Logger(),
		tracer:       otel.Tracer("github.com/collapp/collapp-api/internal/service/application"),
		now:          time.Now,
	}
}

func (s *applicationService) Submit(ctx context.Context, studentID uint, payload dto.ApplicationSubmitRequest, files map[string]*multipart.FileHeader) (dto.ApplicationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("application.student_id", int64(studentID)),
		attribute.Int64("application.college_id", int64(payload.CollegeID)),
	)

	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !settings.ApplicationsOpen {
		return dto.ApplicationResponse{}, ErrApplicationsClosed
	}

	college, err := s.colleges.GetByID(ctx, payload.CollegeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrCollegeNotFound
		}
		return dto.ApplicationResponse{}, err
	}
	if !college.IsPublished {
		return dto.ApplicationResponse{}, ErrCollegeUnpublished
	}

	if !college.OffersProgram(payload.FirstChoiceProgram) {
		return dto.ApplicationResponse{}, ErrProgramNotOffered
	}
	if payload.SecondChoiceProgram != "" {
		if payload.SecondChoiceProgram == payload.FirstChoiceProgram {
			return dto.ApplicationResponse{}, ErrDuplicateProgramChoice
		}
		if !college.OffersProgram(payload.SecondChoiceProgram) {
			return dto.ApplicationResponse{}, ErrProgramNotOffered
		}
	}

	applied, err := s.applications.ExistsForStudentAndCollege(ctx, studentID, payload.CollegeID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if applied {
		return dto.ApplicationResponse{}, ErrAlreadyApplied
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("failed to load student profile: %w", err)
	}

	requirements := college.RequirementSet()
	if len(requirements) == 0 {
		return dto.ApplicationResponse{}, fmt.Errorf("college %d has no published requirement set", college.ID)
	}

	var missing []string
	for _, req := range requirements {
		file, ok := files[req.ID]
		if !ok || file == nil || file.Size == 0 {
			missing = append(missing, req.Label)
			continue
		}
		if err := validateDocumentFile(file); err != nil {
			observability.UploadRejected().WithLabelValues("type").Inc()
			return dto.ApplicationResponse{}, fmt.Errorf("%s: %w", req.Label, err)
		}
	}
	if len(missing) > 0 {
		return dto.ApplicationResponse{}, &MissingDocumentsError{Labels: missing}
	}

	urls, err := s.uploadRequirementFiles(ctx, studentID, requirements, files)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	documents := make([]models.SubmittedDocument, 0, len(requirements))
	for i, req := range requirements {
		documents = append(documents, models.SubmittedDocument{
			ID:      req.ID,
			Label:   req.Label,
			FileURL: urls[i],
			Status:  models.DocumentStatusPending,
		})
	}

	application := models.Application{
		StudentID:           studentID,
		CollegeID:           college.ID,
		CollegeName:         college.Name,
		StudentName:         student.FullName(),
		StudentEmail:        student.Email,
		StudentPictureURL:   student.ProfilePictureURL,
		Status:              models.ApplicationStatusUnderReview,
		FirstChoiceProgram:  payload.FirstChoiceProgram,
		SecondChoiceProgram: payload.SecondChoiceProgram,
		SubmittedAt:         s.now().UTC(),
	}
	application.SetDocumentList(documents)

	if err := s.applications.Create(ctx, &application); err != nil {
		// The uploads are orphaned now; log their URLs so a cleanup job can
		// reconcile them.
		s.logger.Error().Err(err).
			Uint("student_id", studentID).
			Uint("college_id", college.ID).
			Strs("orphaned_uploads", urls).
			Msg("application write failed after uploads succeeded")
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationsSubmitted().Inc()
	s.logger.Info().
		Uint("application_id", application.ID).
		Uint("student_id", studentID).
		Uint("college_id", college.ID).
		Int("documents", len(documents)).
		Msg("application submitted")

	return dto.NewApplicationResponse(application), nil
}

// uploadRequirementFiles stores every requirement file concurrently. Either
// all uploads succeed, or the error is returned and any URLs that did land
// are logged for cleanup.
func (s *applicationService) uploadRequirementFiles(ctx context.Context, studentID uint, requirements []models.Requirement, files map[string]*multipart.FileHeader) ([]string, error) {
	folder := fmt.Sprintf("user-documents/%d", studentID)
	urls := make([]string, len(requirements))
	uploadErrs := make([]error, len(requirements))

	var wg sync.WaitGroup
	for i, req := range requirements {
		wg.Add(1)
		go func(i int, req models.Requirement) {
			defer wg.Done()

			file := files[req.ID]
			reader, err := file.Open()
			if err != nil {
				uploadErrs[i] = fmt.Errorf("%s: failed to open file: %w", req.Label, err)
				return
			}
			defer reader.Close()

			name := fmt.Sprintf("%s-%s", req.ID, uuid.NewString())
			url, err := s.storage.Upload(ctx, folder, name, reader)
			if err != nil {
				uploadErrs[i] = fmt.Errorf("%s: %w", req.Label, err)
				return
			}
			urls[i] = url
		}(i, req)
	}
	wg.Wait()

	var uploaded []string
	var firstErr error
	for i := range requirements {
		if uploadErrs[i] != nil && firstErr == nil {
			firstErr = uploadErrs[i]
		}
		if urls[i] != "" {
			uploaded = append(uploaded, urls[i])
		}
	}

	if firstErr != nil {
		if len(uploaded) > 0 {
			for _, url := range uploaded {
				if destroyErr := s.storage.Destroy(ctx, url); destroyErr != nil {
					s.logger.Error().
						Err(destroyErr).
						Str("file_url", url).
						Msg("failed to remove orphaned upload")
				}
			}
			s.logger.Warn().
				Uint("student_id", studentID).
				Strs("orphaned_uploads", uploaded).
				Msg("partial upload failure during submission")
		}
		return nil, fmt.Errorf("failed to upload documents: %w", firstErr)
	}

	return urls, nil
}

func (s *applicationService) List(ctx context.Context, filter dto.ApplicationFilter) ([]dto.ApplicationResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	applications, err := s.applications.List(ctx, repository.ApplicationFilter{
		StudentID: filter.StudentID,
		CollegeID: filter.CollegeID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewApplicationResponseSlice(applications), nil
}

func (s *applicationService) Get(ctx context.Context, id uint) (dto.ApplicationResponse, error) {
	application, err := s.loadApplication(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) HasApplied(ctx context.Context, studentID, collegeID uint) (bool, error) {
	return s.applications.ExistsForStudentAndCollege(ctx, studentID, collegeID)
}

func (s *applicationService) UpdateDocumentStatus(ctx context.Context, applicationID uint, documentID string, payload dto.DocumentStatusUpdateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	return s.applyDocumentUpdates(ctx, applicationID, []dto.DocumentBatchEntry{{
		DocumentID: documentID,
		Status:     payload.Status,
		Note:       payload.Note,
	}})
}

func (s *applicationService) BatchUpdateDocuments(ctx context.Context, applicationID uint, payload dto.DocumentBatchUpdateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	return s.applyDocumentUpdates(ctx, applicationID, payload.Updates)
}

// applyDocumentUpdates performs one read-modify-write of the parent
// application. All updates land together or not at all.
func (s *applicationService) applyDocumentUpdates(ctx context.Context, applicationID uint, updates []dto.DocumentBatchEntry) (dto.ApplicationResponse, error) {
	application, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	if application.IsDecided() {
		return dto.ApplicationResponse{}, ErrApplicationDecided
	}

	documents := application.DocumentList()
	index := make(map[string]int, len(documents))
	for i, doc := range documents {
		index[doc.ID] = i
	}

	changed := make([]models.SubmittedDocument, 0, len(updates))
	for _, update := range updates {
		i, ok := index[update.DocumentID]
		if !ok {
			return dto.ApplicationResponse{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, update.DocumentID)
		}

		documents[i].Status = update.Status
		if update.Status == models.DocumentStatusResubmit {
			note := s.sanitizer.Sanitize(update.Note)
			documents[i].ResubmissionNote = &note
		} else {
			documents[i].ResubmissionNote = nil
		}
		changed = append(changed, documents[i])
	}

	application.SetDocumentList(documents)

	if err := s.updateApplication(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	for _, doc := range changed {
		s.notifier.NotifyDocumentReview(ctx, application, doc)
	}

	s.logger.Info().
		Uint("application_id", application.ID).
		Int("documents_updated", len(changed)).
		Msg("document statuses updated")

	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) Resubmit(ctx context.Context, studentID, applicationID uint, documentID string, file *multipart.FileHeader) (dto.ApplicationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "application.resubmit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("application.id", int64(applicationID)),
		attribute.String("application.document_id", documentID),
	)

	if file == nil || file.Size == 0 {
		return dto.ApplicationResponse{}, fmt.Errorf("replacement file is required")
	}

	application, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	if application.StudentID != studentID {
		return dto.ApplicationResponse{}, ErrNotApplicationOwner
	}
	if application.IsDecided() {
		return dto.ApplicationResponse{}, ErrApplicationDecided
	}

	documents := application.DocumentList()
	target := -1
	for i, doc := range documents {
		if doc.ID == documentID {
			target = i
			break
		}
	}
	if target == -1 {
		return dto.ApplicationResponse{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}

	if documents[target].Status != models.DocumentStatusResubmit {
		return dto.ApplicationResponse{}, ErrResubmitNotRequested
	}

	if err := validateDocumentFile(file); err != nil {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return dto.ApplicationResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	// Upload before touching the old asset so a failed upload leaves the
	// previous file authoritative.
	folder := fmt.Sprintf("user-documents/%d", studentID)
	name := fmt.Sprintf("%s-%s", documentID, uuid.NewString())
	newURL, err := s.storage.Upload(ctx, folder, name, reader)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("failed to upload replacement file: %w", err)
	}

	oldURL := documents[target].FileURL
	documents[target].FileURL = newURL
	documents[target].Status = models.DocumentStatusPending
	documents[target].ResubmissionNote = nil
	application.SetDocumentList(documents)

	if err := s.updateApplication(ctx, &application); err != nil {
		s.logger.Warn().
			Uint("application_id", applicationID).
			Str("orphaned_upload", newURL).
			Msg("resubmission write failed after upload succeeded")
		return dto.ApplicationResponse{}, err
	}

	if oldURL != "" {
		if err := s.storage.Destroy(ctx, oldURL); err != nil {
			s.logger.Warn().Err(err).
				Str("file_url", oldURL).
				Msg("failed to remove replaced document file")
		}
	}

	s.logger.Info().
		Uint("application_id", application.ID).
		Str("document_id", documentID).
		Msg("document resubmitted")

	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) Decide(ctx context.Context, applicationID uint, payload dto.ApplicationDecisionRequest) (dto.ApplicationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "application.decide")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("application.id", int64(applicationID)),
		attribute.String("application.decision", payload.Decision),
	)

	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}

	message := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if message == "" {
		return dto.ApplicationResponse{}, fmt.Errorf("decision message is required")
	}

	application, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	if application.IsDecided() {
		return dto.ApplicationResponse{}, ErrApplicationDecided
	}

	if payload.Decision == models.ApplicationStatusAccepted {
		if payload.FinalProgram == "" {
			return dto.ApplicationResponse{}, ErrFinalProgramRequired
		}
		if !application.OffersProgram(payload.FinalProgram) {
			return dto.ApplicationResponse{}, ErrFinalProgramNotChosen
		}
		if blocking := application.PendingDocumentLabels(); len(blocking) > 0 {
			return dto.ApplicationResponse{}, &DecisionBlockedError{Labels: blocking}
		}
	}

	decidedAt := s.now().UTC()
	application.Status = payload.Decision
	application.FinalMessage = message
	application.DecisionDate = &decidedAt
	if payload.Decision == models.ApplicationStatusAccepted {
		application.FinalProgram = payload.FinalProgram
	}

	if err := s.updateApplication(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationDecisions().WithLabelValues(payload.Decision).Inc()
	s.notifier.NotifyDecision(ctx, application)
	s.logger.Info().
		Uint("application_id", application.ID).
		Str("decision", payload.Decision).
		Msg("application decided")

	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) loadApplication(ctx context.Context, id uint) (models.Application, error) {
	application, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	return application, nil
}

func (s *applicationService) updateApplication(ctx context.Context, application *models.Application) error {
	err := s.applications.Update(ctx, application)
	if errors.Is(err, repository.ErrStaleApplication) {
		return ErrApplicationConflict
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrApplicationNotFound
	}
	return err
}
