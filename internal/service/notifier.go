package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/collapp/collapp-api/internal/models"
	"github.com/collapp/collapp-api/internal/repository"
)

// StudentNotifier records review outcomes for the applicant. Delivery is
// best-effort: failures are logged and never abort the triggering operation.
type StudentNotifier interface {
	NotifyDocumentReview(ctx context.Context, application models.Application, document models.SubmittedDocument)
	NotifyDecision(ctx context.Context, application models.Application)
}

type loggingNotifier struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
}

// NewLoggingNotifier constructs a notifier that writes inbox rows and logs
// the delivery in place of an outbound email integration.
func NewLoggingNotifier(repo repository.NotificationRepository, logger zerolog.Logger) StudentNotifier {
	return &loggingNotifier{
		repo:   repo,
		logger: logger.With().Str("component", "student_notifier").Logger(),
	}
}

func (n *loggingNotifier) NotifyDocumentReview(ctx context.Context, application models.Application, document models.SubmittedDocument) {
	message := fmt.Sprintf("Your %s was marked %s.", document.Label, document.Status)
	if document.Status == models.DocumentStatusResubmit && document.ResubmissionNote != nil && *document.ResubmissionNote != "" {
		message = fmt.Sprintf("Your %s needs to be resubmitted: %s", document.Label, *document.ResubmissionNote)
	}

	n.record(ctx, models.Notification{
		UserID:        application.StudentID,
		ApplicationID: application.ID,
		Type:          models.NotificationTypeDocumentReview,
		Message:       message,
	})
}

func (n *loggingNotifier) NotifyDecision(ctx context.Context, application models.Application) {
	message := fmt.Sprintf("%s has made a decision on your application: %s.", application.CollegeName, application.Status)

	n.record(ctx, models.Notification{
		UserID:        application.StudentID,
		ApplicationID: application.ID,
		Type:          models.NotificationTypeDecision,
		Message:       message,
	})
}

func (n *loggingNotifier) record(ctx context.Context, notification models.Notification) {
	if err := n.repo.Create(ctx, &notification); err != nil {
		n.logger.Warn().Err(err).
			Uint("user_id", notification.UserID).
			Uint("application_id", notification.ApplicationID).
			Msg("failed to record notification")
		return
	}

	n.logger.Info().
		Uint("user_id", notification.UserID).
		Uint("application_id", notification.ApplicationID).
		Str("type", notification.Type).
		Msg("notification delivered to student inbox")
}
