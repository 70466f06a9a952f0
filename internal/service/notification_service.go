package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/collapp/collapp-api/internal/dto"
	"github.com/collapp/collapp-api/internal/repository"
)

// ErrNotificationNotFound indicates the inbox entry does not exist for the user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService exposes the student notification inbox.
type NotificationService interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}
