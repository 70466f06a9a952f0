package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

// ErrUserNotFound indicates a user account could not be found.
var ErrUserNotFound = errors.New("user not found")

// StudentService manages student profiles and onboarding.
type StudentService interface {
	GetProfile(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	CompleteOnboarding(ctx context.Context, userID uint, payload dto.OnboardingRequest, birthCertificate, schoolID *multipart.FileHeader) (dto.ProfileResponse, error)
	UpdateProfilePicture(ctx context.Context, userID uint, picture *multipart.FileHeader) (dto.ProfilePictureResponse, error)
}

type studentService struct {
	users     repository.UserRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(users repository.UserRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		users:     users,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) GetProfile(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(user), nil
}

func (s *studentService) CompleteOnboarding(ctx context.Context, userID uint, payload dto.OnboardingRequest, birthCertificate, schoolID *multipart.FileHeader) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	if birthCertificate == nil || birthCertificate.Size == 0 {
		return dto.ProfileResponse{}, fmt.Errorf("birth certificate file is required")
	}
	if schoolID == nil || schoolID.Size == 0 {
		return dto.ProfileResponse{}, fmt.Errorf("school id file is required")
	}
	if err := validateDocumentFile(birthCertificate); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("birth certificate: %w", err)
	}
	if err := validateDocumentFile(schoolID); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("school id: %w", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	folder := fmt.Sprintf("user-documents/%d", userID)
	birthCertURL, err := s.uploadFile(ctx, folder, "birth-cert", birthCertificate)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	schoolIDURL, err := s.uploadFile(ctx, folder, "school-id", schoolID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	user.FirstName = payload.FirstName
	user.MiddleName = payload.MiddleName
	user.LastName = payload.LastName
	user.Sex = payload.Sex
	user.DateOfBirth = payload.DateOfBirth
	user.BirthCertificateURL = birthCertURL
	user.SchoolIDURL = schoolIDURL
	user.OnboardingComplete = true

	address := models.Address{
		IsInternational: payload.AddressKind == "international",
		StreetAddress:   payload.StreetAddress,
		ZipCode:         payload.ZipCode,
	}
	if address.IsInternational {
		address.Country = payload.Country
		address.FullAddress = payload.FullAddress
	} else {
		address.Region = payload.Region
		address.Province = payload.Province
		address.City = payload.City
	}
	user.SetAddress(address)

	user.SetGuardians([]models.Guardian{
		{Relation: "father", Name: payload.FatherName, Occupation: payload.FatherOccupation, Contact: payload.FatherContact},
		{Relation: "mother", Name: payload.MotherName, Occupation: payload.MotherOccupation, Contact: payload.MotherContact},
	})

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Msg("student onboarding completed")

	return dto.NewProfileResponse(user), nil
}

func (s *studentService) UpdateProfilePicture(ctx context.Context, userID uint, picture *multipart.FileHeader) (dto.ProfilePictureResponse, error) {
	if picture == nil || picture.Size == 0 {
		return dto.ProfilePictureResponse{}, fmt.Errorf("profile picture file is required")
	}
	if err := validateImageFile(picture); err != nil {
		return dto.ProfilePictureResponse{}, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.ProfilePictureResponse{}, err
	}

	folder := fmt.Sprintf("user-documents/%d", userID)
	url, err := s.uploadFile(ctx, folder, "profile-picture", picture)
	if err != nil {
		return dto.ProfilePictureResponse{}, err
	}

	oldURL := user.ProfilePictureURL
	user.ProfilePictureURL = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.ProfilePictureResponse{}, err
	}

	if oldURL != "" {
		if err := s.storage.Destroy(ctx, oldURL); err != nil {
			s.logger.Warn().Err(err).Str("file_url", oldURL).Msg("failed to remove replaced profile picture")
		}
	}

	s.logger.Info().Uint("user_id", userID).Msg("profile picture updated")

	return dto.ProfilePictureResponse{ProfilePictureURL: url}, nil
}

func (s *studentService) uploadFile(ctx context.Context, folder, kind string, file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s file: %w", kind, err)
	}
	defer reader.Close()

	name := fmt.Sprintf("%s-%s", kind, uuid.NewString())
	url, err := s.storage.Upload(ctx, folder, name, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", kind, err)
	}

	return url, nil
}

func (s *studentService) loadUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
