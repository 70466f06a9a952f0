package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
)

func newStudentFixture(t *testing.T) (StudentService, *memoryUserRepo, *stubStorage, models.User) {
	t.Helper()

	users := newMemoryUserRepo()
	storage := &stubStorage{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewStudentService(users, storage, validate, zerolog.Nop())

	student := models.User{Email: "maria@example.com", Role: models.RoleStudent}
	require.NoError(t, users.Create(context.Background(), &student))

	return svc, users, storage, student
}

func philippineOnboarding() dto.OnboardingRequest {
	return dto.OnboardingRequest{
		FirstName:        "Maria",
		LastName:         "Santos",
		Sex:              "female",
		DateOfBirth:      "2006-03-14",
		AddressKind:      "philippines",
		StreetAddress:    "123 Rizal St",
		ZipCode:          "1000",
		Region:           "NCR",
		Province:         "Metro Manila",
		City:             "Manila",
		FatherName:       "Jose Santos",
		FatherOccupation: "Engineer",
		FatherContact:    "09170000001",
		MotherName:       "Ana Santos",
		MotherOccupation: "Teacher",
		MotherContact:    "09170000002",
	}
}

func TestStudentOnboardingStoresProfile(t *testing.T) {
	svc, users, storage, student := newStudentFixture(t)

	profile, err := svc.CompleteOnboarding(context.Background(), student.ID, philippineOnboarding(),
		newTestFileHeader(t, "birth.pdf", pdfContent),
		newTestFileHeader(t, "school-id.pdf", pdfContent))
	require.NoError(t, err)

	require.Equal(t, "Maria", profile.FirstName)
	require.True(t, profile.OnboardingComplete)
	require.Equal(t, 2, storage.uploads)

	stored, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.True(t, stored.OnboardingComplete)

	address := stored.HomeAddress()
	require.False(t, address.IsInternational)
	require.Equal(t, "Manila", address.City)

	guardians := stored.GuardianList()
	require.Len(t, guardians, 2)
	require.Equal(t, "father", guardians[0].Relation)
}

func TestStudentOnboardingRequiresProvinceForPhilippineAddress(t *testing.T) {
	svc, _, _, student := newStudentFixture(t)

	payload := philippineOnboarding()
	payload.Province = ""

	_, err := svc.CompleteOnboarding(context.Background(), student.ID, payload,
		newTestFileHeader(t, "birth.pdf", pdfContent),
		newTestFileHeader(t, "school-id.pdf", pdfContent))
	require.Error(t, err)
}

func TestStudentOnboardingInternationalAddress(t *testing.T) {
	svc, users, _, student := newStudentFixture(t)

	payload := philippineOnboarding()
	payload.AddressKind = "international"
	payload.Region = ""
	payload.Province = ""
	payload.City = ""
	payload.Country = "Singapore"
	payload.FullAddress = "10 Orchard Rd, Singapore"

	_, err := svc.CompleteOnboarding(context.Background(), student.ID, payload,
		newTestFileHeader(t, "birth.pdf", pdfContent),
		newTestFileHeader(t, "school-id.pdf", pdfContent))
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	address := stored.HomeAddress()
	require.True(t, address.IsInternational)
	require.Equal(t, "Singapore", address.Country)
}

func TestUpdateProfilePictureReplacesOldAsset(t *testing.T) {
	svc, users, storage, student := newStudentFixture(t)

	first, err := svc.UpdateProfilePicture(context.Background(), student.ID, newTestFileHeader(t, "face.png", pngContent))
	require.NoError(t, err)
	require.NotEmpty(t, first.ProfilePictureURL)
	require.Empty(t, storage.destroyed)

	second, err := svc.UpdateProfilePicture(context.Background(), student.ID, newTestFileHeader(t, "face2.png", pngContent))
	require.NoError(t, err)
	require.NotEqual(t, first.ProfilePictureURL, second.ProfilePictureURL)
	require.Equal(t, []string{first.ProfilePictureURL}, storage.destroyed)

	stored, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, second.ProfilePictureURL, stored.ProfilePictureURL)
}

func TestUpdateProfilePictureRejectsDocuments(t *testing.T) {
	svc, _, _, student := newStudentFixture(t)

	_, err := svc.UpdateProfilePicture(context.Background(), student.ID, newTestFileHeader(t, "scan.pdf", pdfContent))
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}
