package dto

import "github.com/collapp/collapp-api/internal/models"

// SettingsUpdateRequest describes the admin payload for platform switches.
type SettingsUpdateRequest struct {
	MaintenanceMode  *bool  `json:"maintenance_mode" validate:"required"`
	ApplicationsOpen *bool  `json:"applications_open" validate:"required"`
	FeaturedColleges []uint `json:"featured_colleges" validate:"omitempty,dive,gt=0"`
}

// SettingsResponse is returned to API clients when viewing platform settings.
type SettingsResponse struct {
	MaintenanceMode  bool   `json:"maintenance_mode"`
	ApplicationsOpen bool   `json:"applications_open"`
	FeaturedColleges []uint `json:"featured_colleges"`
}

// NewSettingsResponse converts the settings model into a DTO.
func NewSettingsResponse(model models.PlatformSettings) SettingsResponse {
	featured := model.FeaturedCollegeIDs()
	if featured == nil {
		featured = []uint{}
	}
	return SettingsResponse{
		MaintenanceMode:  model.MaintenanceMode,
		ApplicationsOpen: model.ApplicationsOpen,
		FeaturedColleges: featured,
	}
}
