package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// PlatformSettings is the single persisted record of platform-wide switches.
type PlatformSettings struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	MaintenanceMode  bool           `gorm:"not null;default:false" json:"maintenance_mode"`
	ApplicationsOpen bool           `gorm:"not null;default:true" json:"applications_open"`
	FeaturedColleges datatypes.JSON `gorm:"type:json" json:"-"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// SetFeaturedColleges stores the featured college identifiers.
func (s *PlatformSettings) SetFeaturedColleges(ids []uint) {
	data, err := json.Marshal(ids)
	if err != nil {
		s.FeaturedColleges = datatypes.JSON([]byte("[]"))
		return
	}
	s.FeaturedColleges = datatypes.JSON(data)
}

// FeaturedCollegeIDs returns the featured college identifiers.
func (s PlatformSettings) FeaturedCollegeIDs() []uint {
	if len(s.FeaturedColleges) == 0 {
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(s.FeaturedColleges, &ids); err != nil {
		return nil
	}
	return ids
}
