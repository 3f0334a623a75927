package models

import "github.com/google/uuid"

// NotificationType tags what a notification is about
type NotificationType string

const (
	NotificationTypeSystem   NotificationType = "System"
	NotificationTypeOrder    NotificationType = "Order"
	NotificationTypeRegister NotificationType = "Register"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeSystem, NotificationTypeOrder, NotificationTypeRegister:
		return true
	}
	return false
}

// Notification is a message shared by all of its recipients. Never mutated after creation.
type Notification struct {
	Base
	Title       string           `gorm:"not null" json:"title"`
	Description *string          `gorm:"type:text" json:"description"`
	Type        NotificationType `gorm:"type:varchar(20);not null;index" json:"type"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// UserNotification is the delivery record of a notification to one recipient
type UserNotification struct {
	Base
	UserID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:ux_user_notifications_user_notification" json:"user_id"`
	NotificationID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:ux_user_notifications_user_notification;index" json:"notification_id"`
	Notification   *Notification `gorm:"foreignKey:NotificationID" json:"notification,omitempty"`
	IsRead         bool          `gorm:"not null;default:false" json:"is_read"`
}

// TableName specifies the table name for the UserNotification model
func (UserNotification) TableName() string {
	return "user_notifications"
}
