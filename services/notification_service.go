package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
)

// DispatchInput describes one notification and who receives it
type DispatchInput struct {
	Type         models.NotificationType
	Title        string
	Description  *string
	RecipientIDs []uuid.UUID
}

// NotificationPage is one page of a user's notifications
type NotificationPage struct {
	Items []models.UserNotification `json:"items"`
	Total int64                     `json:"total"`
}

// NotificationService fans notifications out to their recipients
type NotificationService struct {
	tx            repositories.TxManager
	notifications *repositories.NotificationRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		tx:            repositories.NewTxManager(db),
		notifications: repositories.NewNotificationRepository(db),
	}
}

// Dispatch creates the notification and one unread delivery per unique recipient in one transaction
func (s *NotificationService) Dispatch(ctx context.Context, input DispatchInput) (*models.Notification, error) {
	var notification *models.Notification
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		notification, err = s.DispatchTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// DispatchTx performs the Dispatch writes inside the caller's transaction
func (s *NotificationService) DispatchTx(ctx context.Context, tx *gorm.DB, input DispatchInput) (*models.Notification, error) {
	if !input.Type.Valid() {
		return nil, validationError("unknown notification type %q", input.Type)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	recipients := uniqueIDs(input.RecipientIDs)
	if len(recipients) == 0 {
		return nil, validationError("at least one recipient is required")
	}

	notification := &models.Notification{
		Title:       title,
		Description: input.Description,
		Type:        input.Type,
	}
	if _, err := s.notifications.WithTx(tx).CreateWithRecipients(ctx, notification, recipients); err != nil {
		return nil, NewStorageError("create notification", err)
	}

	config.Logger().Info("notification dispatched",
		zap.String("notification_id", notification.ID.String()),
		zap.String("type", string(notification.Type)),
		zap.Int("recipients", len(recipients)),
	)
	return notification, nil
}

// GetForUser returns a page of the notifications addressed to userID
func (s *NotificationService) GetForUser(ctx context.Context, userID uuid.UUID, filter repositories.NotificationFilter) (*NotificationPage, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, validationError("unknown notification type %q", *filter.Type)
	}

	items, total, err := s.notifications.FindPageForUser(ctx, userID, filter)
	if err != nil {
		return nil, NewStorageError("list notifications", err)
	}
	if items == nil {
		items = []models.UserNotification{}
	}
	return &NotificationPage{Items: items, Total: total}, nil
}

// MarkRead flags the user's deliveries of notificationIDs as read and returns how many changed.
// Ids not addressed to userID are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error) {
	ids := uniqueIDs(notificationIDs)
	if len(ids) == 0 {
		return 0, validationError("at least one notification id is required")
	}

	updated, err := s.notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, NewStorageError("mark notifications read", err)
	}
	return updated, nil
}

// UnreadCount returns the number of unread notifications of userID
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, NewStorageError("count unread notifications", err)
	}
	return count, nil
}

// uniqueIDs drops nil and repeated ids, keeping first occurrence order
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
