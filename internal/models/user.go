package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// User is an account on the platform. Authentication itself lives outside
// this service; users arrive here already identified by a JWT.
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Email               string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role                string         `gorm:"size:32;not null" json:"role"`
	FirstName           string         `gorm:"size:255" json:"first_name"`
	MiddleName          string         `gorm:"size:255" json:"middle_name"`
	LastName            string         `gorm:"size:255" json:"last_name"`
	Sex                 string         `gorm:"size:16" json:"sex"`
	DateOfBirth         string         `gorm:"size:32" json:"date_of_birth"`
	Address             datatypes.JSON `gorm:"type:json" json:"-"`
	Guardians           datatypes.JSON `gorm:"type:json" json:"-"`
	BirthCertificateURL string         `gorm:"size:512" json:"birth_certificate_url"`
	SchoolIDURL         string         `gorm:"size:512" json:"school_id_url"`
	ProfilePictureURL   string         `gorm:"size:512" json:"profile_picture_url"`
	OnboardingComplete  bool           `gorm:"not null;default:false" json:"onboarding_complete"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

const (
	// RoleStudent can submit and resubmit application documents.
	RoleStudent = "student"
	// RoleSchoolRep reviews documents and records decisions for one college.
	RoleSchoolRep = "schoolrep"
	// RoleAdmin manages colleges, users and platform settings.
	RoleAdmin = "admin"
)

// Address captures the student's home address. Philippine addresses use the
// region/province/city triple, international ones the country and full text.
type Address struct {
	IsInternational bool   `json:"is_international"`
	StreetAddress   string `json:"street_address"`
	ZipCode         string `json:"zip_code"`
	Region          string `json:"region,omitempty"`
	Province        string `json:"province,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	FullAddress     string `json:"full_address,omitempty"`
}

// Guardian holds one parent's contact details collected during onboarding.
type Guardian struct {
	Relation   string `json:"relation"`
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Contact    string `json:"contact"`
}

// FullName joins the user's name parts, skipping empty segments.
func (u User) FullName() string {
	name := u.FirstName
	if u.MiddleName != "" {
		name += " " + u.MiddleName
	}
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// SetAddress serializes the address into its JSON column.
func (u *User) SetAddress(address Address) {
	data, err := json.Marshal(address)
	if err != nil {
		u.Address = datatypes.JSON([]byte("{}"))
		return
	}
	u.Address = datatypes.JSON(data)
}

// HomeAddress deserializes the stored address.
func (u User) HomeAddress() Address {
	var address Address
	if len(u.Address) > 0 {
		_ = json.Unmarshal(u.Address, &address)
	}
	return address
}

// SetGuardians serializes the guardian list into its JSON column.
func (u *User) SetGuardians(guardians []Guardian) {
	data, err := json.Marshal(guardians)
	if err != nil {
		u.Guardians = datatypes.JSON([]byte("[]"))
		return
	}
	u.Guardians = datatypes.JSON(data)
}

// GuardianList deserializes the stored guardian list.
func (u User) GuardianList() []Guardian {
	if len(u.Guardians) == 0 {
		return nil
	}

	var guardians []Guardian
	if err := json.Unmarshal(u.Guardians, &guardians); err != nil {
		return nil
	}
	return guardians
}
