package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"skipfurther/internal/domain/entity"
	"skipfurther/internal/domain/repository"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/logger"
)

const DefaultNotificationLimit = 50

// Notifier records a notification for a user and pushes it in realtime.
// Failures are logged: a notification never fails the operation that caused it.
type Notifier interface {
	Notify(ctx context.Context, userID, notificationType, content, relatedID string)
}

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	publisher        EventPublisher
	log              zerolog.Logger
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, publisher EventPublisher) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		log:              logger.With("notifications"),
	}
}

func (uc *NotificationUseCase) Notify(ctx context.Context, userID, notificationType, content, relatedID string) {
	if userID == "" {
		return
	}

	notification := &entity.Notification{
		UserID:    userID,
		Type:      notificationType,
		Content:   content,
		RelatedID: relatedID,
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Str("type", notificationType).Msg("failed to store notification")
		return
	}

	if uc.publisher == nil {
		return
	}
	event := &entity.Event{
		Type:      notificationType,
		Payload:   notification,
		Timestamp: time.Now().Unix(),
	}
	if err := uc.publisher.Publish(ctx, userID, event); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish notification")
	}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, int64, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	notifications, err := uc.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

func (uc *NotificationUseCase) owned(ctx context.Context, userID, id string) (*entity.Notification, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, errors.Forbidden("You don't have permission to access this notification", nil)
	}
	return notification, nil
}

func (uc *NotificationUseCase) SetRead(ctx context.Context, userID, id string, isRead bool) (*entity.Notification, error) {
	notification, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := uc.notificationRepo.SetRead(ctx, id, isRead); err != nil {
		return nil, err
	}

	notification.IsRead = isRead
	return notification, nil
}

func (uc *NotificationUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return err
	}
	return uc.notificationRepo.Delete(ctx, id)
}
