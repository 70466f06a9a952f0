package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

const (
	publishedCollegesCacheKey = "colleges:published"
	maxBrochureCount          = 5
)

var (
	// ErrRepEmailTaken indicates the representative email already has an account.
	ErrRepEmailTaken = errors.New("a user with this email already exists")
	// ErrRepCollegeNotFound indicates the representative has no college assigned.
	ErrRepCollegeNotFound = errors.New("no college is assigned to this representative")
	// ErrTooManyBrochures indicates the brochure upload limit was exceeded.
	ErrTooManyBrochures = fmt.Errorf("a maximum of %d brochures can be uploaded", maxBrochureCount)
)

// CollegeService manages college records, publishing and their assets.
type CollegeService interface {
	List(ctx context.Context, publishedOnly bool) ([]dto.CollegeResponse, error)
	Get(ctx context.Context, id uint) (dto.CollegeResponse, error)
	GetByRep(ctx context.Context, repUserID uint) (dto.CollegeResponse, error)
	Create(ctx context.Context, payload dto.CollegeCreateRequest, logo *multipart.FileHeader) (dto.CollegeResponse, error)
	Update(ctx context.Context, id uint, payload dto.CollegeUpdateRequest, logo *multipart.FileHeader) (dto.CollegeResponse, error)
	Delete(ctx context.Context, id uint) error
	CompleteOnboarding(ctx context.Context, repUserID uint, payload dto.CollegeOnboardingRequest, brochures []*multipart.FileHeader) (dto.CollegeResponse, error)
	Unpublish(ctx context.Context, repUserID uint) (dto.CollegeResponse, error)
}

type collegeService struct {
	colleges  repository.CollegeRepository
	users     repository.UserRepository
	storage   FileStorage
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCollegeService constructs a CollegeService instance.
func NewCollegeService(
	colleges repository.CollegeRepository,
	users repository.UserRepository,
	storage FileStorage,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) CollegeService {
	return &collegeService{
		colleges:  colleges,
		users:     users,
		storage:   storage,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "college_service").Logger(),
	}
}

func (s *collegeService) List(ctx context.Context, publishedOnly bool) ([]dto.CollegeResponse, error) {
	if publishedOnly && s.cache != nil {
		if cached, err := s.cache.Get(ctx, publishedCollegesCacheKey).Result(); err == nil {
			var responses []dto.CollegeResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Msg("published colleges cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read published colleges cache")
		}
	}

	colleges, err := s.colleges.List(ctx, repository.CollegeFilter{PublishedOnly: publishedOnly})
	if err != nil {
		return nil, err
	}

	responses := dto.NewCollegeResponseSlice(colleges)

	if publishedOnly && s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, publishedCollegesCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store published colleges cache")
			}
		}
	}

	return responses, nil
}

func (s *collegeService) Get(ctx context.Context, id uint) (dto.CollegeResponse, error) {
	college, err := s.loadCollege(ctx, id)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) GetByRep(ctx context.Context, repUserID uint) (dto.CollegeResponse, error) {
	college, err := s.loadCollegeByRep(ctx, repUserID)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) Create(ctx context.Context, payload dto.CollegeCreateRequest, logo *multipart.FileHeader) (dto.CollegeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CollegeResponse{}, err
	}

	if logo == nil || logo.Size == 0 {
		return dto.CollegeResponse{}, fmt.Errorf("logo file is required")
	}
	if err := validateImageFile(logo); err != nil {
		return dto.CollegeResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.RepEmail); err == nil {
		return dto.CollegeResponse{}, ErrRepEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CollegeResponse{}, err
	}

	rep := models.User{
		Email:              payload.RepEmail,
		Role:               models.RoleSchoolRep,
		FirstName:          payload.Name + " Rep",
		OnboardingComplete: true,
	}
	if err := s.users.Create(ctx, &rep); err != nil {
		return dto.CollegeResponse{}, err
	}

	logoURL, err := s.uploadLogo(ctx, payload.Name, logo)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	college := models.College{
		Name:        payload.Name,
		Description: payload.Description,
		WebsiteURL:  payload.WebsiteURL,
		LogoURL:     logoURL,
		RepUserID:   rep.ID,
	}
	if err := s.colleges.Create(ctx, &college); err != nil {
		return dto.CollegeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info().Uint("college_id", college.ID).Uint("rep_user_id", rep.ID).Msg("college created")

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) Update(ctx context.Context, id uint, payload dto.CollegeUpdateRequest, logo *multipart.FileHeader) (dto.CollegeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CollegeResponse{}, err
	}

	college, err := s.loadCollege(ctx, id)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	college.Name = payload.Name
	college.Description = payload.Description
	college.WebsiteURL = payload.WebsiteURL
	if payload.IsPublished != nil {
		college.IsPublished = *payload.IsPublished
	}

	if logo != nil && logo.Size > 0 {
		if err := validateImageFile(logo); err != nil {
			return dto.CollegeResponse{}, err
		}

		newLogoURL, err := s.uploadLogo(ctx, payload.Name, logo)
		if err != nil {
			return dto.CollegeResponse{}, err
		}

		if college.LogoURL != "" {
			if err := s.storage.Destroy(ctx, college.LogoURL); err != nil {
				s.logger.Warn().Err(err).Str("file_url", college.LogoURL).Msg("failed to remove replaced logo")
			}
		}
		college.LogoURL = newLogoURL
	}

	if err := s.colleges.Update(ctx, &college); err != nil {
		return dto.CollegeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info().Uint("college_id", college.ID).Msg("college updated")

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) Delete(ctx context.Context, id uint) error {
	college, err := s.loadCollege(ctx, id)
	if err != nil {
		return err
	}

	// Asset and rep cleanup is best-effort; the college row removal is what
	// must succeed.
	if college.LogoURL != "" {
		if err := s.storage.Destroy(ctx, college.LogoURL); err != nil {
			s.logger.Warn().Err(err).Str("file_url", college.LogoURL).Msg("failed to remove college logo")
		}
	}
	for _, url := range college.BrochureURLList() {
		if err := s.storage.Destroy(ctx, url); err != nil {
			s.logger.Warn().Err(err).Str("file_url", url).Msg("failed to remove college brochure")
		}
	}
	if college.RepUserID != 0 {
		if err := s.users.Delete(ctx, college.RepUserID); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", college.RepUserID).Msg("failed to remove representative account")
		}
	}

	if err := s.colleges.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollegeNotFound
		}
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info().Uint("college_id", id).Msg("college deleted")

	return nil
}

func (s *collegeService) CompleteOnboarding(ctx context.Context, repUserID uint, payload dto.CollegeOnboardingRequest, brochures []*multipart.FileHeader) (dto.CollegeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CollegeResponse{}, err
	}

	if len(brochures) > maxBrochureCount {
		return dto.CollegeResponse{}, ErrTooManyBrochures
	}
	for _, brochure := range brochures {
		if err := validateFileType(brochure, []string{"application/pdf"}); err != nil {
			return dto.CollegeResponse{}, fmt.Errorf("%s: %w", brochure.Filename, err)
		}
	}

	college, err := s.loadCollegeByRep(ctx, repUserID)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	college.Region = payload.Region
	college.City = payload.City
	college.SetPrograms(payload.Programs)
	college.SetRequirementIDs(payload.Requirements)
	college.SetCustomRequirements(trimNonEmpty(payload.CustomRequirements))
	college.IsPublished = true

	if len(brochures) > 0 {
		urls, err := s.uploadBrochures(ctx, college.ID, brochures)
		if err != nil {
			return dto.CollegeResponse{}, err
		}
		college.SetBrochureURLs(urls)
	}

	if err := s.colleges.Update(ctx, &college); err != nil {
		return dto.CollegeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info().Uint("college_id", college.ID).Msg("college onboarding completed, college published")

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) Unpublish(ctx context.Context, repUserID uint) (dto.CollegeResponse, error) {
	college, err := s.loadCollegeByRep(ctx, repUserID)
	if err != nil {
		return dto.CollegeResponse{}, err
	}

	college.IsPublished = false
	if err := s.colleges.Update(ctx, &college); err != nil {
		return dto.CollegeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info().Uint("college_id", college.ID).Msg("college unpublished")

	return dto.NewCollegeResponse(college), nil
}

func (s *collegeService) uploadLogo(ctx context.Context, collegeName string, logo *multipart.FileHeader) (string, error) {
	reader, err := logo.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open logo file: %w", err)
	}
	defer reader.Close()

	name := fmt.Sprintf("%s-%s", strings.ReplaceAll(strings.ToLower(collegeName), " ", "-"), uuid.NewString())
	url, err := s.storage.Upload(ctx, "college-logos", name, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return url, nil
}

// uploadBrochures stores all brochures concurrently; any failure fails the
// whole operation and logs the URLs that did land.
func (s *collegeService) uploadBrochures(ctx context.Context, collegeID uint, brochures []*multipart.FileHeader) ([]string, error) {
	folder := fmt.Sprintf("college-brochures/%d", collegeID)
	urls := make([]string, len(brochures))
	uploadErrs := make([]error, len(brochures))

	var wg sync.WaitGroup
	for i, brochure := range brochures {
		wg.Add(1)
		go func(i int, brochure *multipart.FileHeader) {
			defer wg.Done()

			reader, err := brochure.Open()
			if err != nil {
				uploadErrs[i] = fmt.Errorf("%s: failed to open file: %w", brochure.Filename, err)
				return
			}
			defer reader.Close()

			name := fmt.Sprintf("brochure-%s", uuid.NewString())
			url, err := s.storage.Upload(ctx, folder, name, reader)
			if err != nil {
				uploadErrs[i] = fmt.Errorf("%s: %w", brochure.Filename, err)
				return
			}
			urls[i] = url
		}(i, brochure)
	}
	wg.Wait()

	var uploaded []string
	var firstErr error
	for i := range brochures {
		if uploadErrs[i] != nil && firstErr == nil {
			firstErr = uploadErrs[i]
		}
		if urls[i] != "" {
			uploaded = append(uploaded, urls[i])
		}
	}

	if firstErr != nil {
		if len(uploaded) > 0 {
			s.logger.Error().
				Uint("college_id", collegeID).
				Strs("orphaned_uploads", uploaded).
				Msg("partial brochure upload failure")
		}
		return nil, fmt.Errorf("failed to upload brochures: %w", firstErr)
	}

	return urls, nil
}

func (s *collegeService) loadCollege(ctx context.Context, id uint) (models.College, error) {
	college, err := s.colleges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.College{}, ErrCollegeNotFound
		}
		return models.College{}, err
	}
	return college, nil
}

func (s *collegeService) loadCollegeByRep(ctx context.Context, repUserID uint) (models.College, error) {
	college, err := s.colleges.GetByRepUserID(ctx, repUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.College{}, ErrRepCollegeNotFound
		}
		return models.College{}, err
	}
	return college, nil
}

func (s *collegeService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publishedCollegesCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate published colleges cache")
	}
}

func trimNonEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
