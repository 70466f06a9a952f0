package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type memoryApplicationRepo struct {
	applications map[uint]models.Application
	nextID       uint
	staleOnce    bool
}

func newMemoryApplicationRepo() *memoryApplicationRepo {
	return &memoryApplicationRepo{
		applications: make(map[uint]models.Application),
		nextID:       1,
	}
}

func (m *memoryApplicationRepo) List(ctx context.Context, filter repository.ApplicationFilter) ([]models.Application, error) {
	results := make([]models.Application, 0, len(m.applications))
	for _, application := range m.applications {
		if filter.StudentID != nil && application.StudentID != *filter.StudentID {
			continue
		}
		if filter.CollegeID != nil && application.CollegeID != *filter.CollegeID {
			continue
		}
		if filter.Status != nil && application.Status != *filter.Status {
			continue
		}
		results = append(results, application)
	}
	return results, nil
}

func (m *memoryApplicationRepo) GetByID(ctx context.Context, id uint) (models.Application, error) {
	application, ok := m.applications[id]
	if !ok {
		return models.Application{}, gorm.ErrRecordNotFound
	}
	return application, nil
}

func (m *memoryApplicationRepo) ExistsForStudentAndCollege(ctx context.Context, studentID, collegeID uint) (bool, error) {
	for _, application := range m.applications {
		if application.StudentID == studentID && application.CollegeID == collegeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	application.ID = m.nextID
	application.Version = 1
	application.CreatedAt = time.Now()
	application.UpdatedAt = time.Now()
	m.applications[m.nextID] = *application
	m.nextID++
	return nil
}

func (m *memoryApplicationRepo) Update(ctx context.Context, application *models.Application) error {
	stored, ok := m.applications[application.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if m.staleOnce {
		m.staleOnce = false
		return repository.ErrStaleApplication
	}
	if stored.Version != application.Version {
		return repository.ErrStaleApplication
	}
	application.Version++
	application.UpdatedAt = time.Now()
	m.applications[application.ID] = *application
	return nil
}

type memoryCollegeRepo struct {
	colleges map[uint]models.College
}

func newMemoryCollegeRepo() *memoryCollegeRepo {
	return &memoryCollegeRepo{colleges: make(map[uint]models.College)}
}

func (m *memoryCollegeRepo) List(ctx context.Context, filter repository.CollegeFilter) ([]models.College, error) {
	results := make([]models.College, 0, len(m.colleges))
	for _, college := range m.colleges {
		if filter.PublishedOnly && !college.IsPublished {
			continue
		}
		results = append(results, college)
	}
	return results, nil
}

func (m *memoryCollegeRepo) GetByID(ctx context.Context, id uint) (models.College, error) {
	college, ok := m.colleges[id]
	if !ok {
		return models.College{}, gorm.ErrRecordNotFound
	}
	return college, nil
}

func (m *memoryCollegeRepo) GetByRepUserID(ctx context.Context, repUserID uint) (models.College, error) {
	for _, college := range m.colleges {
		if college.RepUserID == repUserID {
			return college, nil
		}
	}
	return models.College{}, gorm.ErrRecordNotFound
}

func (m *memoryCollegeRepo) Create(ctx context.Context, college *models.College) error {
	college.ID = uint(len(m.colleges) + 1)
	m.colleges[college.ID] = *college
	return nil
}

func (m *memoryCollegeRepo) Update(ctx context.Context, college *models.College) error {
	if _, ok := m.colleges[college.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.colleges[college.ID] = *college
	return nil
}

func (m *memoryCollegeRepo) Delete(ctx context.Context, id uint) error {
	delete(m.colleges, id)
	return nil
}

func (m *memoryCollegeRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.colleges)), nil
}

type memoryUserRepo struct {
	users map[uint]models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User)}
}

func (m *memoryUserRepo) List(ctx context.Context) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		results = append(results, user)
	}
	return results, nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	for _, user := range m.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *memoryUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

type memorySettingsRepo struct {
	settings models.PlatformSettings
}

func (m *memorySettingsRepo) Get(ctx context.Context) (models.PlatformSettings, error) {
	return m.settings, nil
}

func (m *memorySettingsRepo) Save(ctx context.Context, settings *models.PlatformSettings) error {
	m.settings = *settings
	return nil
}

type stubStorage struct {
	uploads        int
	destroyed      []string
	failNext       bool
	failNamePrefix string
}

func (s *stubStorage) Upload(_ context.Context, folder, name string, _ io.Reader) (string, error) {
	if s.failNext {
		return "", errors.New("upstream unavailable")
	}
	if s.failNamePrefix != "" && strings.HasPrefix(name, s.failNamePrefix) {
		return "", errors.New("upstream unavailable")
	}
	s.uploads++
	return fmt.Sprintf("https://cdn.example.com/%s/%s.pdf", folder, name), nil
}

func (s *stubStorage) Destroy(_ context.Context, fileURL string) error {
	s.destroyed = append(s.destroyed, fileURL)
	return nil
}

type recordingNotifier struct {
	reviews   []models.SubmittedDocument
	decisions []models.Application
}

func (r *recordingNotifier) NotifyDocumentReview(_ context.Context, _ models.Application, document models.SubmittedDocument) {
	r.reviews = append(r.reviews, document)
}

func (r *recordingNotifier) NotifyDecision(_ context.Context, application models.Application) {
	r.decisions = append(r.decisions, application)
}

type applicationFixture struct {
	service      ApplicationService
	applications *memoryApplicationRepo
	colleges     *memoryCollegeRepo
	users        *memoryUserRepo
	settings     *memorySettingsRepo
	storage      *stubStorage
	notifier     *recordingNotifier
	college      models.College
	student      models.User
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()

	applications := newMemoryApplicationRepo()
	colleges := newMemoryCollegeRepo()
	users := newMemoryUserRepo()
	settings := &memorySettingsRepo{settings: models.PlatformSettings{ID: 1, ApplicationsOpen: true}}
	storage := &stubStorage{}
	notifier := &recordingNotifier{}

	student := models.User{
		Email:     "juan@example.com",
		Role:      models.RoleStudent,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
	}
	require.NoError(t, users.Create(context.Background(), &student))

	college := models.College{
		Name:        "Mapua Institute",
		Description: "An engineering school.",
		RepUserID:   99,
		IsPublished: true,
	}
	college.SetPrograms([]string{"Computer Science", "Civil Engineering"})
	college.SetRequirementIDs([]string{"high_school_transcript", "birth_certificate"})
	require.NoError(t, colleges.Create(context.Background(), &college))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewApplicationService(applications, colleges, users, settings, storage, notifier, validate, zerolog.Nop())

	return &applicationFixture{
		service:      svc,
		applications: applications,
		colleges:     colleges,
		users:        users,
		settings:     settings,
		storage:      storage,
		notifier:     notifier,
		college:      college,
		student:      student,
	}
}

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))
	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func (f *applicationFixture) requirementFiles(t *testing.T) map[string]*multipart.FileHeader {
	t.Helper()
	files := make(map[string]*multipart.FileHeader)
	for _, req := range f.college.RequirementSet() {
		files[req.ID] = newTestFileHeader(t, req.ID+".pdf", pdfContent)
	}
	return files
}

func (f *applicationFixture) submit(t *testing.T) dto.ApplicationResponse {
	t.Helper()
	response, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.NoError(t, err)
	return response
}

func TestSubmitCreatesPendingDocuments(t *testing.T) {
	f := newApplicationFixture(t)

	response, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:           f.college.ID,
		FirstChoiceProgram:  "Computer Science",
		SecondChoiceProgram: "Civil Engineering",
	}, f.requirementFiles(t))
	require.NoError(t, err)

	require.Equal(t, models.ApplicationStatusUnderReview, response.Status)
	require.Equal(t, "Mapua Institute", response.CollegeName)
	require.Equal(t, "Juan Dela Cruz", response.StudentName)
	require.Equal(t, "juan@example.com", response.StudentEmail)
	require.Equal(t, uint(1), response.Version)
	require.False(t, response.SubmittedAt.IsZero())
	require.Nil(t, response.DecisionDate)

	require.Len(t, response.Documents, 2)
	for _, doc := range response.Documents {
		require.Equal(t, models.DocumentStatusPending, doc.Status)
		require.NotEmpty(t, doc.FileURL)
		require.Nil(t, doc.ResubmissionNote)
	}
	require.Equal(t, 2, f.storage.uploads)
}

func TestSubmitRejectsWhenApplicationsClosed(t *testing.T) {
	f := newApplicationFixture(t)
	f.settings.settings.ApplicationsOpen = false

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.ErrorIs(t, err, ErrApplicationsClosed)
}

func TestSubmitRejectsUnpublishedCollege(t *testing.T) {
	f := newApplicationFixture(t)
	f.college.IsPublished = false
	require.NoError(t, f.colleges.Update(context.Background(), &f.college))

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.ErrorIs(t, err, ErrCollegeUnpublished)
}

func TestSubmitRejectsDuplicateApplication(t *testing.T) {
	f := newApplicationFixture(t)
	f.submit(t)

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestSubmitRejectsProgramChoices(t *testing.T) {
	f := newApplicationFixture(t)

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Astrology",
	}, f.requirementFiles(t))
	require.ErrorIs(t, err, ErrProgramNotOffered)

	_, err = f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:           f.college.ID,
		FirstChoiceProgram:  "Computer Science",
		SecondChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.ErrorIs(t, err, ErrDuplicateProgramChoice)
}

func TestSubmitReportsMissingDocuments(t *testing.T) {
	f := newApplicationFixture(t)

	files := f.requirementFiles(t)
	delete(files, "birth_certificate")

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, files)

	var missing *MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{"PSA Birth Certificate"}, missing.Labels)
	require.Zero(t, f.storage.uploads)
}

func TestSubmitRejectsUnsupportedFileType(t *testing.T) {
	f := newApplicationFixture(t)

	files := f.requirementFiles(t)
	files["birth_certificate"] = newTestFileHeader(t, "cert.txt", []byte("plain text, not a document"))

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, files)
	require.ErrorIs(t, err, ErrUnsupportedFileType)
	require.Zero(t, f.storage.uploads)
}

func TestSubmitUploadFailureLeavesNoApplication(t *testing.T) {
	f := newApplicationFixture(t)
	f.storage.failNext = true

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.Error(t, err)
	require.Empty(t, f.applications.applications)
}

func TestSubmitPartialUploadFailureDestroysLandedFiles(t *testing.T) {
	f := newApplicationFixture(t)
	f.storage.failNamePrefix = "birth_certificate"

	_, err := f.service.Submit(context.Background(), f.student.ID, dto.ApplicationSubmitRequest{
		CollegeID:          f.college.ID,
		FirstChoiceProgram: "Computer Science",
	}, f.requirementFiles(t))
	require.Error(t, err)
	require.Empty(t, f.applications.applications)
	require.Len(t, f.storage.destroyed, 1)
	require.Contains(t, f.storage.destroyed[0], "high_school_transcript")
}

func TestUpdateDocumentStatusCouplesResubmissionNote(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	documentID := submitted.Documents[0].ID

	response, err := f.service.UpdateDocumentStatus(context.Background(), submitted.ID, documentID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusResubmit,
		Note:   "Scan is blurry, <script>alert(1)</script>please re-upload.",
	})
	require.NoError(t, err)

	require.Equal(t, models.DocumentStatusResubmit, response.Documents[0].Status)
	require.NotNil(t, response.Documents[0].ResubmissionNote)
	require.NotContains(t, *response.Documents[0].ResubmissionNote, "<script>")
	require.Contains(t, *response.Documents[0].ResubmissionNote, "please re-upload")

	response, err = f.service.UpdateDocumentStatus(context.Background(), submitted.ID, documentID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusAccepted,
	})
	require.NoError(t, err)
	require.Equal(t, models.DocumentStatusAccepted, response.Documents[0].Status)
	require.Nil(t, response.Documents[0].ResubmissionNote)

	require.Len(t, f.notifier.reviews, 2)
}

func TestBatchUpdateUnknownDocumentFailsAtomically(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.BatchUpdateDocuments(context.Background(), submitted.ID, dto.DocumentBatchUpdateRequest{
		Updates: []dto.DocumentBatchEntry{
			{DocumentID: submitted.Documents[0].ID, Status: models.DocumentStatusAccepted},
			{DocumentID: "no_such_document", Status: models.DocumentStatusAccepted},
		},
	})
	require.ErrorIs(t, err, ErrDocumentNotFound)

	stored, getErr := f.applications.GetByID(context.Background(), submitted.ID)
	require.NoError(t, getErr)
	for _, doc := range stored.DocumentList() {
		require.Equal(t, models.DocumentStatusPending, doc.Status)
	}
	require.Empty(t, f.notifier.reviews)
}

func TestDocumentUpdateAfterDecisionFails(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	f.acceptAllDocuments(t, submitted)
	f.decideAccept(t, submitted.ID)

	_, err := f.service.UpdateDocumentStatus(context.Background(), submitted.ID, submitted.Documents[0].ID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusRejected,
	})
	require.ErrorIs(t, err, ErrApplicationDecided)
}

func TestConcurrentDocumentUpdateConflicts(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	f.applications.staleOnce = true

	_, err := f.service.UpdateDocumentStatus(context.Background(), submitted.ID, submitted.Documents[0].ID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusAccepted,
	})
	require.ErrorIs(t, err, ErrApplicationConflict)
}

func TestResubmitRequiresReviewerRequest(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.Resubmit(context.Background(), f.student.ID, submitted.ID, submitted.Documents[0].ID, newTestFileHeader(t, "new.pdf", pdfContent))
	require.ErrorIs(t, err, ErrResubmitNotRequested)
}

func TestResubmitRejectsOtherStudents(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.Resubmit(context.Background(), f.student.ID+1, submitted.ID, submitted.Documents[0].ID, newTestFileHeader(t, "new.pdf", pdfContent))
	require.ErrorIs(t, err, ErrNotApplicationOwner)
}

func TestResubmitReplacesFileAndDestroysOld(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	documentID := submitted.Documents[0].ID
	oldURL := submitted.Documents[0].FileURL

	_, err := f.service.UpdateDocumentStatus(context.Background(), submitted.ID, documentID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusResubmit,
		Note:   "Please upload a clearer scan.",
	})
	require.NoError(t, err)

	response, err := f.service.Resubmit(context.Background(), f.student.ID, submitted.ID, documentID, newTestFileHeader(t, "replacement.pdf", pdfContent))
	require.NoError(t, err)

	require.Equal(t, models.DocumentStatusPending, response.Documents[0].Status)
	require.Nil(t, response.Documents[0].ResubmissionNote)
	require.NotEqual(t, oldURL, response.Documents[0].FileURL)
	require.Equal(t, []string{oldURL}, f.storage.destroyed)
}

func TestResubmitUploadFailureKeepsOldFile(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	documentID := submitted.Documents[0].ID
	oldURL := submitted.Documents[0].FileURL

	_, err := f.service.UpdateDocumentStatus(context.Background(), submitted.ID, documentID, dto.DocumentStatusUpdateRequest{
		Status: models.DocumentStatusResubmit,
		Note:   "Wrong file.",
	})
	require.NoError(t, err)

	f.storage.failNext = true
	_, err = f.service.Resubmit(context.Background(), f.student.ID, submitted.ID, documentID, newTestFileHeader(t, "replacement.pdf", pdfContent))
	require.Error(t, err)

	stored, getErr := f.applications.GetByID(context.Background(), submitted.ID)
	require.NoError(t, getErr)
	documents := stored.DocumentList()
	require.Equal(t, oldURL, documents[0].FileURL)
	require.Equal(t, models.DocumentStatusResubmit, documents[0].Status)
	require.Empty(t, f.storage.destroyed)
}

func TestDecideAcceptRequiresAllDocumentsAccepted(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision:     models.ApplicationStatusAccepted,
		Message:      "Welcome aboard.",
		FinalProgram: "Computer Science",
	})

	var blocked *DecisionBlockedError
	require.ErrorAs(t, err, &blocked)
	require.ElementsMatch(t, []string{"High School Transcript", "PSA Birth Certificate"}, blocked.Labels)
}

func TestDecideAcceptSetsFinalState(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	f.acceptAllDocuments(t, submitted)

	response, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision:     models.ApplicationStatusAccepted,
		Message:      "Congratulations, see you in June.",
		FinalProgram: "Computer Science",
	})
	require.NoError(t, err)

	require.Equal(t, models.ApplicationStatusAccepted, response.Status)
	require.Equal(t, "Computer Science", response.FinalProgram)
	require.Equal(t, "Congratulations, see you in June.", response.FinalMessage)
	require.NotNil(t, response.DecisionDate)
	require.Len(t, f.notifier.decisions, 1)
}

func TestDecideRejectAllowsPendingDocuments(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	response, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision: models.ApplicationStatusRejected,
		Message:  "We are unable to offer admission this year.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusRejected, response.Status)
	require.Empty(t, response.FinalProgram)
	require.NotNil(t, response.DecisionDate)
}

func TestDecideTwiceFails(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision: models.ApplicationStatusRejected,
		Message:  "Not this year.",
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision:     models.ApplicationStatusAccepted,
		Message:      "Changed our minds.",
		FinalProgram: "Computer Science",
	})
	require.ErrorIs(t, err, ErrApplicationDecided)
}

func TestDecideValidatesFinalProgram(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)
	f.acceptAllDocuments(t, submitted)

	_, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision: models.ApplicationStatusAccepted,
		Message:  "Welcome.",
	})
	require.ErrorIs(t, err, ErrFinalProgramRequired)

	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision:     models.ApplicationStatusAccepted,
		Message:      "Welcome.",
		FinalProgram: "Civil Engineering",
	})
	require.ErrorIs(t, err, ErrFinalProgramNotChosen)
}

func TestDecideRejectsEmptySanitizedMessage(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	_, err := f.service.Decide(context.Background(), submitted.ID, dto.ApplicationDecisionRequest{
		Decision: models.ApplicationStatusRejected,
		Message:  "<script>alert(1)</script>",
	})
	require.Error(t, err)
	require.Contains(t, strings.ToLower(err.Error()), "message")
}

func TestListFiltersByStudent(t *testing.T) {
	f := newApplicationFixture(t)
	submitted := f.submit(t)

	studentID := f.student.ID
	results, err := f.service.List(context.Background(), dto.ApplicationFilter{StudentID: &studentID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, submitted.ID, results[0].ID)

	otherID := studentID + 1
	results, err = f.service.List(context.Background(), dto.ApplicationFilter{StudentID: &otherID})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestHasApplied(t *testing.T) {
	f := newApplicationFixture(t)

	applied, err := f.service.HasApplied(context.Background(), f.student.ID, f.college.ID)
	require.NoError(t, err)
	require.False(t, applied)

	f.submit(t)

	applied, err = f.service.HasApplied(context.Background(), f.student.ID, f.college.ID)
	require.NoError(t, err)
	require.True(t, applied)
}

func (f *applicationFixture) acceptAllDocuments(t *testing.T, submitted dto.ApplicationResponse) {
	t.Helper()
	updates := make([]dto.DocumentBatchEntry, 0, len(submitted.Documents))
	for _, doc := range submitted.Documents {
		updates = append(updates, dto.DocumentBatchEntry{DocumentID: doc.ID, Status: models.DocumentStatusAccepted})
	}
	_, err := f.service.BatchUpdateDocuments(context.Background(), submitted.ID, dto.DocumentBatchUpdateRequest{Updates: updates})
	require.NoError(t, err)
}

func (f *applicationFixture) decideAccept(t *testing.T, applicationID uint) {
	t.Helper()
	_, err := f.service.Decide(context.Background(), applicationID, dto.ApplicationDecisionRequest{
		Decision:     models.ApplicationStatusAccepted,
		Message:      "Accepted.",
		FinalProgram: "Computer Science",
	})
	require.NoError(t, err)
}
