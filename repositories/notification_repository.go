package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

// NotificationFilter narrows the notifications listed for one user
type NotificationFilter struct {
	IsRead *bool
	Type   *models.NotificationType
	Oldest bool // oldest first instead of newest first
	Offset int
	Limit  int
}

// NotificationRepository stores notifications and their per-recipient delivery rows
type NotificationRepository struct {
	notifications     *Repository[models.Notification]
	userNotifications *Repository[models.UserNotification]
}

// NewNotificationRepository creates a NotificationRepository over db
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		notifications:     NewRepository[models.Notification](db),
		userNotifications: NewRepository[models.UserNotification](db),
	}
}

// WithTx returns a NotificationRepository whose statements run inside tx
func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		notifications:     r.notifications.WithTx(tx),
		userNotifications: r.userNotifications.WithTx(tx),
	}
}

// CreateWithRecipients inserts the notification and one unread delivery row per recipient
func (r *NotificationRepository) CreateWithRecipients(ctx context.Context, notification *models.Notification, recipientIDs []uuid.UUID) ([]models.UserNotification, error) {
	if err := r.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	deliveries := make([]models.UserNotification, 0, len(recipientIDs))
	for _, userID := range recipientIDs {
		deliveries = append(deliveries, models.UserNotification{
			UserID:         userID,
			NotificationID: notification.ID,
			IsRead:         false,
		})
	}
	if err := r.userNotifications.CreateBatch(ctx, deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// FindPageForUser returns a page of the user's deliveries with their notification, plus the total
func (r *NotificationRepository) FindPageForUser(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]models.UserNotification, int64, error) {
	query := r.userNotifications.DB(ctx).
		Model(&models.UserNotification{}).
		Joins("JOIN notifications ON notifications.id = user_notifications.notification_id").
		Where("user_notifications.user_id = ?", userID)
	if filter.IsRead != nil {
		query = query.Where("user_notifications.is_read = ?", *filter.IsRead)
	}
	if filter.Type != nil {
		query = query.Where("notifications.type = ?", *filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "notifications.created_at DESC"
	if filter.Oldest {
		order = "notifications.created_at ASC"
	}

	var deliveries []models.UserNotification
	err := query.
		Preload("Notification").
		Order(order).
		Order("user_notifications.id").
		Offset(normalizeOffset(filter.Offset)).
		Limit(NormalizeLimit(filter.Limit)).
		Find(&deliveries).Error
	if err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

// MarkRead flips the read flag of the user's deliveries for notificationIDs.
// Ids not addressed to the user match nothing and are ignored.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, notificationIDs []uuid.UUID) (int64, error) {
	result := r.userNotifications.DB(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND notification_id IN ?", userID, notificationIDs).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// CountUnread returns the number of unread deliveries of the user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.userNotifications.DB(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
