package models

import "time"

// Notification is an inbox entry recorded for a student when a reviewer acts
// on their application. Delivery beyond this record is best-effort and
// log-only; the row is the durable trace.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	Type          string    `gorm:"size:64;not null" json:"type"`
	Message       string    `gorm:"type:text" json:"message"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	// NotificationTypeDocumentReview marks a per-document status update.
	NotificationTypeDocumentReview = "document_review"
	// NotificationTypeDecision marks a final accept/reject decision.
	NotificationTypeDecision = "decision"
)
