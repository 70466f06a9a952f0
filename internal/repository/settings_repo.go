package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/models"
)

// platformSettingsID pins the settings table to a single row.
const platformSettingsID = 1

// SettingsRepository persists the platform settings record.
type SettingsRepository interface {
	Get(ctx context.Context) (models.PlatformSettings, error)
	Save(ctx context.Context, settings *models.PlatformSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository instantiates the repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored settings, falling back to defaults when the record
// has never been written.
func (r *settingsRepository) Get(ctx context.Context) (models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.WithContext(ctx).First(&settings, platformSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PlatformSettings{ID: platformSettingsID, ApplicationsOpen: true}, nil
	}
	if err != nil {
		return models.PlatformSettings{}, err
	}

	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.PlatformSettings) error {
	settings.ID = platformSettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
