package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the opaque identity and timestamps shared by every entity
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random UUID when the caller did not set one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All returns every persisted model, in dependency order, for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Service{},
		&ServiceDevice{},
		&DeviceDetail{},
		&Order{},
		&OrderDetail{},
		&Notification{},
		&UserNotification{},
		&RepairmanForm{},
		&RepairmanFormDetail{},
	}
}
