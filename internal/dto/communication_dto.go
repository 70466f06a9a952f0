package dto

import (
	"time"

	"github.com/collapp/collapp-api/internal/models"
)

// NotificationResponse serializes an inbox entry for a student.
type NotificationResponse struct {
	ID            uint      `json:"id"`
	ApplicationID uint      `json:"application_id"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewNotificationResponse converts a Notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            model.ID,
		ApplicationID: model.ApplicationID,
		Type:          model.Type,
		Message:       model.Message,
		Read:          model.Read,
		CreatedAt:     model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
