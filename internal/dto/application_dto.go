package dto

import (
	"time"

	"github.com/collapp/collapp-api/internal/models"
)

// ApplicationSubmitRequest describes the multipart payload for submitting an
// application. Files arrive separately, one per requirement id.
type ApplicationSubmitRequest struct {
	CollegeID           uint   `form:"college_id" validate:"required,gt=0"`
	FirstChoiceProgram  string `form:"first_choice_program" validate:"required,min=1"`
	SecondChoiceProgram string `form:"second_choice_program" validate:"omitempty,min=1"`
}

// DocumentStatusUpdateRequest updates one document's review status.
type DocumentStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected resubmit"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}

// DocumentBatchEntry is one entry in a batch review update.
type DocumentBatchEntry struct {
	DocumentID string `json:"document_id" validate:"required,min=1"`
	Status     string `json:"status" validate:"required,oneof=pending accepted rejected resubmit"`
	Note       string `json:"note" validate:"omitempty,max=2000"`
}

// DocumentBatchUpdateRequest applies several review updates in one
// read-modify-write of the parent application.
type DocumentBatchUpdateRequest struct {
	Updates []DocumentBatchEntry `json:"updates" validate:"required,min=1,dive"`
}

// ApplicationDecisionRequest records the final accept/reject decision.
type ApplicationDecisionRequest struct {
	Decision     string `json:"decision" validate:"required,oneof=accepted rejected"`
	Message      string `json:"message" validate:"required,min=1"`
	FinalProgram string `json:"final_program" validate:"omitempty,min=1"`
}

// ApplicationFilter describes query string filters for listing applications.
type ApplicationFilter struct {
	StudentID *uint   `query:"student_id"`
	CollegeID *uint   `query:"college_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=under_review accepted rejected"`
}

// SubmittedDocumentResponse serializes one document within an application.
type SubmittedDocumentResponse struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	FileURL          string  `json:"file_url"`
	Status           string  `json:"status"`
	ResubmissionNote *string `json:"resubmission_note,omitempty"`
}

// ApplicationResponse is returned to API clients when viewing applications.
type ApplicationResponse struct {
	ID                  uint                        `json:"id"`
	StudentID           uint                        `json:"student_id"`
	CollegeID           uint                        `json:"college_id"`
	CollegeName         string                      `json:"college_name"`
	StudentName         string                      `json:"student_name"`
	StudentEmail        string                      `json:"student_email"`
	StudentPictureURL   string                      `json:"student_picture_url,omitempty"`
	Status              string                      `json:"status"`
	FirstChoiceProgram  string                      `json:"first_choice_program"`
	SecondChoiceProgram string                      `json:"second_choice_program,omitempty"`
	Documents           []SubmittedDocumentResponse `json:"documents"`
	FinalMessage        string                      `json:"final_message,omitempty"`
	FinalProgram        string                      `json:"final_program,omitempty"`
	SubmittedAt         time.Time                   `json:"submitted_at"`
	DecisionDate        *time.Time                  `json:"decision_date,omitempty"`
	Version             uint                        `json:"version"`
}

// NewApplicationResponse converts an Application model into a DTO.
func NewApplicationResponse(model models.Application) ApplicationResponse {
	documents := model.DocumentList()
	responses := make([]SubmittedDocumentResponse, 0, len(documents))
	for _, doc := range documents {
		responses = append(responses, SubmittedDocumentResponse{
			ID:               doc.ID,
			Label:            doc.Label,
			FileURL:          doc.FileURL,
			Status:           doc.Status,
			ResubmissionNote: doc.ResubmissionNote,
		})
	}

	return ApplicationResponse{
		ID:                  model.ID,
		StudentID:           model.StudentID,
		CollegeID:           model.CollegeID,
		CollegeName:         model.CollegeName,
		StudentName:         model.StudentName,
		StudentEmail:        model.StudentEmail,
		StudentPictureURL:   model.StudentPictureURL,
		Status:              model.Status,
		FirstChoiceProgram:  model.FirstChoiceProgram,
		SecondChoiceProgram: model.SecondChoiceProgram,
		Documents:           responses,
		FinalMessage:        model.FinalMessage,
		FinalProgram:        model.FinalProgram,
		SubmittedAt:         model.SubmittedAt,
		DecisionDate:        model.DecisionDate,
		Version:             model.Version,
	}
}

// NewApplicationResponseSlice converts a slice of models into DTOs.
func NewApplicationResponseSlice(applications []models.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}
	return responses
}
