package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Application represents one student's submission to one college, together
// with the review state of every required document.
type Application struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	StudentID           uint           `gorm:"not null;index" json:"student_id"`
	CollegeID           uint           `gorm:"not null;index" json:"college_id"`
	CollegeName         string         `gorm:"size:255;not null" json:"college_name"`
	StudentName         string         `gorm:"size:255;not null" json:"student_name"`
	StudentEmail        string         `gorm:"size:255;not null" json:"student_email"`
	StudentPictureURL   string         `gorm:"size:512" json:"student_picture_url"`
	Status              string         `gorm:"size:32;not null" json:"status"`
	FirstChoiceProgram  string         `gorm:"size:255;not null" json:"first_choice_program"`
	SecondChoiceProgram string         `gorm:"size:255" json:"second_choice_program"`
	Documents           datatypes.JSON `gorm:"type:json" json:"-"`
	FinalMessage        string         `gorm:"type:text" json:"final_message"`
	FinalProgram        string         `gorm:"size:255" json:"final_program"`
	SubmittedAt         time.Time      `gorm:"not null" json:"submitted_at"`
	DecisionDate        *time.Time     `json:"decision_date"`
	Version             uint           `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

const (
	// ApplicationStatusUnderReview is the initial state of every application.
	ApplicationStatusUnderReview = "under_review"
	// ApplicationStatusAccepted is a terminal state reached only when every document is accepted.
	ApplicationStatusAccepted = "accepted"
	// ApplicationStatusRejected is a terminal state.
	ApplicationStatusRejected = "rejected"
)

const (
	// DocumentStatusPending marks a document awaiting review.
	DocumentStatusPending = "pending"
	// DocumentStatusAccepted marks a document approved by the reviewer.
	DocumentStatusAccepted = "accepted"
	// DocumentStatusRejected marks a document refused by the reviewer.
	DocumentStatusRejected = "rejected"
	// DocumentStatusResubmit marks a document the reviewer wants replaced.
	DocumentStatusResubmit = "resubmit"
)

// SubmittedDocument is the applicant's fulfillment of one college requirement.
// ResubmissionNote is present exactly when Status is resubmit; every other
// status transition removes the field entirely.
type SubmittedDocument struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	FileURL          string  `json:"file_url"`
	Status           string  `json:"status"`
	ResubmissionNote *string `json:"resubmission_note,omitempty"`
}

// IsDecided reports whether the application has reached a terminal state.
func (a Application) IsDecided() bool {
	return a.Status == ApplicationStatusAccepted || a.Status == ApplicationStatusRejected
}

// SetDocumentList serializes the documents into the JSON storage column.
func (a *Application) SetDocumentList(documents []SubmittedDocument) {
	data, err := json.Marshal(documents)
	if err != nil {
		a.Documents = datatypes.JSON([]byte("[]"))
		return
	}
	a.Documents = datatypes.JSON(data)
}

// DocumentList deserializes the stored documents into a Go slice.
func (a Application) DocumentList() []SubmittedDocument {
	if len(a.Documents) == 0 {
		return nil
	}

	var documents []SubmittedDocument
	if err := json.Unmarshal(a.Documents, &documents); err != nil {
		return nil
	}

	return documents
}

// PendingDocumentLabels returns the labels of documents that are not yet
// accepted, in their stored order.
func (a Application) PendingDocumentLabels() []string {
	var labels []string
	for _, doc := range a.DocumentList() {
		if doc.Status != DocumentStatusAccepted {
			labels = append(labels, doc.Label)
		}
	}
	return labels
}

// OffersProgram reports whether program matches one of the two chosen programs.
func (a Application) OffersProgram(program string) bool {
	if program == "" {
		return false
	}
	return program == a.FirstChoiceProgram || program == a.SecondChoiceProgram
}
