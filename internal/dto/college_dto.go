package dto

import (
	"time"

	"github.com/collapp/collapp-api/internal/models"
)

// CollegeCreateRequest describes the admin payload for registering a college
// together with its school representative account. The logo file arrives as
// a separate multipart part.
type CollegeCreateRequest struct {
	Name        string `form:"name" validate:"required,min=3"`
	Description string `form:"description" validate:"required,min=10"`
	WebsiteURL  string `form:"website_url" validate:"omitempty,url"`
	RepEmail    string `form:"rep_email" validate:"required,email"`
}

// CollegeUpdateRequest describes the admin payload for editing a college.
type CollegeUpdateRequest struct {
	Name        string `form:"name" validate:"required,min=3"`
	Description string `form:"description" validate:"required,min=10"`
	WebsiteURL  string `form:"website_url" validate:"omitempty,url"`
	IsPublished *bool  `form:"is_published"`
}

// CollegeOnboardingRequest describes the representative's onboarding payload.
// Completing onboarding publishes the college. Brochure files arrive as
// separate multipart parts.
type CollegeOnboardingRequest struct {
	Region             string   `form:"region" validate:"required,min=1"`
	City               string   `form:"city" validate:"required,min=1"`
	Programs           []string `form:"programs" validate:"required,min=1,dive,min=1"`
	Requirements       []string `form:"requirements" validate:"required,min=1,dive,min=1"`
	CustomRequirements []string `form:"custom_requirements" validate:"omitempty,dive"`
}

// RequirementResponse describes one requirement in a college response.
type RequirementResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CollegeResponse is returned to API clients when viewing colleges.
type CollegeResponse struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	LogoURL      string                `json:"logo_url"`
	WebsiteURL   string                `json:"website_url,omitempty"`
	Region       string                `json:"region,omitempty"`
	City         string                `json:"city,omitempty"`
	IsPublished  bool                  `json:"is_published"`
	Programs     []string              `json:"programs"`
	Requirements []RequirementResponse `json:"requirements"`
	BrochureURLs []string              `json:"brochure_urls"`
	CreatedAt    time.Time             `json:"created_at"`
}

// NewCollegeResponse converts a College model into a DTO.
func NewCollegeResponse(model models.College) CollegeResponse {
	requirements := model.RequirementSet()
	reqResponses := make([]RequirementResponse, 0, len(requirements))
	for _, req := range requirements {
		reqResponses = append(reqResponses, RequirementResponse{ID: req.ID, Label: req.Label})
	}

	return CollegeResponse{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		LogoURL:      model.LogoURL,
		WebsiteURL:   model.WebsiteURL,
		Region:       model.Region,
		City:         model.City,
		IsPublished:  model.IsPublished,
		Programs:     model.ProgramList(),
		Requirements: reqResponses,
		BrochureURLs: model.BrochureURLList(),
		CreatedAt:    model.CreatedAt,
	}
}

// NewCollegeResponseSlice converts a slice of models into DTOs.
func NewCollegeResponseSlice(colleges []models.College) []CollegeResponse {
	responses := make([]CollegeResponse, 0, len(colleges))
	for _, college := range colleges {
		responses = append(responses, NewCollegeResponse(college))
	}
	return responses
}
