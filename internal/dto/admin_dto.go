package dto

import (
	"time"

	"github.com/collapp/collapp-api/internal/models"
)

// DashboardStatsResponse aggregates headline counts for the admin dashboard.
type DashboardStatsResponse struct {
	TotalUsers      int64 `json:"total_users"`
	TotalStudents   int64 `json:"total_students"`
	TotalSchoolReps int64 `json:"total_school_reps"`
	TotalColleges   int64 `json:"total_colleges"`
}

// UserUpdateRequest describes the admin payload for editing an account.
type UserUpdateRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name" validate:"required,min=1"`
	Role      string `json:"role" validate:"required,oneof=student schoolrep admin"`
}

// UserSummaryResponse lists an account without profile details.
type UserSummaryResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserSummaryResponse converts a User model into a summary DTO.
func NewUserSummaryResponse(model models.User) UserSummaryResponse {
	return UserSummaryResponse{
		ID:        model.ID,
		Email:     model.Email,
		Role:      model.Role,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		CreatedAt: model.CreatedAt,
	}
}

// NewUserSummaryResponseSlice converts a slice of models into DTOs.
func NewUserSummaryResponseSlice(users []models.User) []UserSummaryResponse {
	responses := make([]UserSummaryResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserSummaryResponse(user))
	}
	return responses
}
