package dto

import (
	"time"

	"github.com/collapp/collapp-api/internal/models"
)

// OnboardingRequest describes the student onboarding payload. The birth
// certificate and school id files arrive as separate multipart parts.
type OnboardingRequest struct {
	FirstName   string `form:"first_name" validate:"required,min=1"`
	MiddleName  string `form:"middle_name" validate:"omitempty"`
	LastName    string `form:"last_name" validate:"required,min=1"`
	Sex         string `form:"sex" validate:"required,oneof=male female other"`
	DateOfBirth string `form:"date_of_birth" validate:"required,min=1"`

	AddressKind   string `form:"address_kind" validate:"required,oneof=philippines international"`
	StreetAddress string `form:"street_address" validate:"required,min=1"`
	ZipCode       string `form:"zip_code" validate:"required,min=1"`
	Region        string `form:"region" validate:"required_if=AddressKind philippines"`
	Province      string `form:"province" validate:"required_if=AddressKind philippines"`
	City          string `form:"city" validate:"required_if=AddressKind philippines"`
	Country       string `form:"country" validate:"required_if=AddressKind international"`
	FullAddress   string `form:"full_address" validate:"required_if=AddressKind international"`

	FatherName       string `form:"father_name" validate:"required,min=1"`
	FatherOccupation string `form:"father_occupation" validate:"required,min=1"`
	FatherContact    string `form:"father_contact" validate:"required,min=1"`
	MotherName       string `form:"mother_name" validate:"required,min=1"`
	MotherOccupation string `form:"mother_occupation" validate:"required,min=1"`
	MotherContact    string `form:"mother_contact" validate:"required,min=1"`
}

// AddressResponse serializes a student's home address.
type AddressResponse struct {
	IsInternational bool   `json:"is_international"`
	StreetAddress   string `json:"street_address"`
	ZipCode         string `json:"zip_code"`
	Region          string `json:"region,omitempty"`
	Province        string `json:"province,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	FullAddress     string `json:"full_address,omitempty"`
}

// GuardianResponse serializes one guardian contact.
type GuardianResponse struct {
	Relation   string `json:"relation"`
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Contact    string `json:"contact"`
}

// ProfileResponse is returned to API clients when viewing a user profile.
type ProfileResponse struct {
	ID                  uint               `json:"id"`
	Email               string             `json:"email"`
	Role                string             `json:"role"`
	FirstName           string             `json:"first_name"`
	MiddleName          string             `json:"middle_name,omitempty"`
	LastName            string             `json:"last_name"`
	Sex                 string             `json:"sex,omitempty"`
	DateOfBirth         string             `json:"date_of_birth,omitempty"`
	Address             *AddressResponse   `json:"address,omitempty"`
	Guardians           []GuardianResponse `json:"guardians,omitempty"`
	BirthCertificateURL string             `json:"birth_certificate_url,omitempty"`
	SchoolIDURL         string             `json:"school_id_url,omitempty"`
	ProfilePictureURL   string             `json:"profile_picture_url,omitempty"`
	OnboardingComplete  bool               `json:"onboarding_complete"`
	CreatedAt           time.Time          `json:"created_at"`
}

// NewProfileResponse converts a User model into a DTO.
func NewProfileResponse(model models.User) ProfileResponse {
	response := ProfileResponse{
		ID:                  model.ID,
		Email:               model.Email,
		Role:                model.Role,
		FirstName:           model.FirstName,
		MiddleName:          model.MiddleName,
		LastName:            model.LastName,
		Sex:                 model.Sex,
		DateOfBirth:         model.DateOfBirth,
		BirthCertificateURL: model.BirthCertificateURL,
		SchoolIDURL:         model.SchoolIDURL,
		ProfilePictureURL:   model.ProfilePictureURL,
		OnboardingComplete:  model.OnboardingComplete,
		CreatedAt:           model.CreatedAt,
	}

	if len(model.Address) > 0 {
		address := model.HomeAddress()
		response.Address = &AddressResponse{
			IsInternational: address.IsInternational,
			StreetAddress:   address.StreetAddress,
			ZipCode:         address.ZipCode,
			Region:          address.Region,
			Province:        address.Province,
			City:            address.City,
			Country:         address.Country,
			FullAddress:     address.FullAddress,
		}
	}

	for _, guardian := range model.GuardianList() {
		response.Guardians = append(response.Guardians, GuardianResponse{
			Relation:   guardian.Relation,
			Name:       guardian.Name,
			Occupation: guardian.Occupation,
			Contact:    guardian.Contact,
		})
	}

	return response
}

// ProfilePictureResponse is returned after a profile picture update.
type ProfilePictureResponse struct {
	ProfilePictureURL string `json:"profile_picture_url"`
}
