package notification

import (
	"context"
	"time"

	notificationRepo "karigar/database/repository/notification"
	"karigar/models"
	"karigar/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService delivers notifications to users. Delivery is
// fire-and-forget: failures are logged and never propagate to the state
// transition that triggered them.
type NotificationService interface {
	Notify(ctx context.Context, userID, ntype, title, message string, data map[string]string)
}

// DefaultNotificationService persists a notification record and sends a
// best-effort FCM push when the user has a registered token.
type DefaultNotificationService struct {
	Repo notificationRepo.NotificationRepository
	FCM  *messaging.Client
}

func (s *DefaultNotificationService) Notify(ctx context.Context, userID, ntype, title, message string, data map[string]string) {
	logger := utils.GetLogger()

	record := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, record); err != nil {
		logger.Warn("notification: failed to persist record",
			zap.String("userID", userID), zap.String("type", ntype), zap.Error(err))
	}

	if s.FCM == nil {
		return
	}
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil || user.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: data,
	}
	if _, err := s.FCM.Send(ctx, msg); err != nil {
		logger.Warn("notification: failed to send FCM push",
			zap.String("userID", userID), zap.Error(err))
	}
}
