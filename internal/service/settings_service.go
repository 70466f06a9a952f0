package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

// SettingsService reads and writes platform-wide switches. Reads are served
// from a short-lived in-process snapshot so the maintenance middleware does
// not hit the database on every request.
type SettingsService interface {
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, payload dto.SettingsUpdateRequest) (dto.SettingsResponse, error)
	MaintenanceMode(ctx context.Context) bool
}

type settingsService struct {
	repo      repository.SettingsRepository
	validator *validator.Validate
	logger    zerolog.Logger

	mu        sync.RWMutex
	snapshot  models.PlatformSettings
	fetchedAt time.Time
	ttl       time.Duration
}

// NewSettingsService constructs a SettingsService instance.
func NewSettingsService(repo repository.SettingsRepository, validate *validator.Validate, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "settings_service").Logger(),
		ttl:       15 * time.Second,
	}
}

func (s *settingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	return dto.NewSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, payload dto.SettingsUpdateRequest) (dto.SettingsResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SettingsResponse{}, err
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	settings.MaintenanceMode = *payload.MaintenanceMode
	settings.ApplicationsOpen = *payload.ApplicationsOpen
	settings.SetFeaturedColleges(payload.FeaturedColleges)

	if err := s.repo.Save(ctx, &settings); err != nil {
		return dto.SettingsResponse{}, err
	}

	s.mu.Lock()
	s.snapshot = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info().
		Bool("maintenance_mode", settings.MaintenanceMode).
		Bool("applications_open", settings.ApplicationsOpen).
		Msg("platform settings updated")

	return dto.NewSettingsResponse(settings), nil
}

// MaintenanceMode reports the maintenance switch, tolerating storage errors
// by assuming normal operation.
func (s *settingsService) MaintenanceMode(ctx context.Context) bool {
	s.mu.RLock()
	fresh := time.Since(s.fetchedAt) < s.ttl
	snapshot := s.snapshot
	s.mu.RUnlock()

	if fresh {
		return snapshot.MaintenanceMode
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read platform settings")
		return false
	}

	s.mu.Lock()
	s.snapshot = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return settings.MaintenanceMode
}
