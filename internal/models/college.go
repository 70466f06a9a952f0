package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// College represents an institution that accepts applications. The
// requirement and program lists are published by the school representative
// during onboarding and seed the document set of every application.
type College struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	Name                    string         `gorm:"size:255;not null;index" json:"name"`
	Description             string         `gorm:"type:text" json:"description"`
	LogoURL                 string         `gorm:"size:512" json:"logo_url"`
	WebsiteURL              string         `gorm:"size:512" json:"website_url"`
	RepUserID               uint           `gorm:"not null;index" json:"rep_user_id"`
	Region                  string         `gorm:"size:128" json:"region"`
	City                    string         `gorm:"size:128" json:"city"`
	IsPublished             bool           `gorm:"not null;default:false" json:"is_published"`
	Programs                datatypes.JSON `gorm:"type:json" json:"-"`
	ApplicationRequirements datatypes.JSON `gorm:"type:json" json:"-"`
	CustomRequirements      datatypes.JSON `gorm:"type:json" json:"-"`
	BrochureURLs            datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// Requirement is one named document type a college demands from applicants.
type Requirement struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StandardRequirements is the catalogue of requirement types a representative
// can pick from during onboarding.
var StandardRequirements = []Requirement{
	{ID: "high_school_transcript", Label: "High School Transcript"},
	{ID: "birth_certificate", Label: "PSA Birth Certificate"},
	{ID: "letter_of_recommendation", Label: "Letter of Recommendation"},
	{ID: "certificate_good_moral", Label: "Certificate of Good Moral Character"},
	{ID: "college_entrance_exam", Label: "College Entrance Exam Result"},
	{ID: "id_photo", Label: "2x2 ID Photo"},
}

func marshalStringList(values []string) datatypes.JSON {
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

func unmarshalStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

// SetPrograms stores the published program list.
func (c *College) SetPrograms(programs []string) { c.Programs = marshalStringList(programs) }

// ProgramList returns the published program list.
func (c College) ProgramList() []string { return unmarshalStringList(c.Programs) }

// SetRequirementIDs stores the selected standard requirement identifiers.
func (c *College) SetRequirementIDs(ids []string) {
	c.ApplicationRequirements = marshalStringList(ids)
}

// RequirementIDList returns the selected standard requirement identifiers.
func (c College) RequirementIDList() []string {
	return unmarshalStringList(c.ApplicationRequirements)
}

// SetCustomRequirements stores free-form requirement labels added by the rep.
func (c *College) SetCustomRequirements(labels []string) {
	c.CustomRequirements = marshalStringList(labels)
}

// CustomRequirementList returns the free-form requirement labels.
func (c College) CustomRequirementList() []string {
	return unmarshalStringList(c.CustomRequirements)
}

// SetBrochureURLs stores the uploaded brochure references.
func (c *College) SetBrochureURLs(urls []string) { c.BrochureURLs = marshalStringList(urls) }

// BrochureURLList returns the uploaded brochure references.
func (c College) BrochureURLList() []string { return unmarshalStringList(c.BrochureURLs) }

// OffersProgram reports whether the college publishes the given program.
func (c College) OffersProgram(program string) bool {
	for _, p := range c.ProgramList() {
		if p == program {
			return true
		}
	}
	return false
}

// RequirementSet resolves the full requirement set: selected standard
// requirements with their labels, followed by custom requirements keyed by a
// slug of their label.
func (c College) RequirementSet() []Requirement {
	var set []Requirement

	labels := make(map[string]string, len(StandardRequirements))
	for _, req := range StandardRequirements {
		labels[req.ID] = req.Label
	}

	for _, id := range c.RequirementIDList() {
		label, ok := labels[id]
		if !ok {
			label = id
		}
		set = append(set, Requirement{ID: id, Label: label})
	}

	for _, label := range c.CustomRequirementList() {
		set = append(set, Requirement{ID: SlugifyRequirement(label), Label: label})
	}

	return set
}

// SlugifyRequirement derives a stable requirement identifier from a custom
// requirement label.
func SlugifyRequirement(label string) string {
	slug := make([]rune, 0, len(label))
	lastDash := false
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z':
			slug = append(slug, r+('a'-'A'))
			lastDash = false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			slug = append(slug, r)
			lastDash = false
		default:
			if !lastDash && len(slug) > 0 {
				slug = append(slug, '-')
				lastDash = true
			}
		}
	}
	for len(slug) > 0 && slug[len(slug)-1] == '-' {
		slug = slug[:len(slug)-1]
	}
	return string(slug)
}
