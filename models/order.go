package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer's repair request
type Order struct {
	Base
	AddressID         uuid.UUID        `gorm:"type:uuid;not null" json:"address_id"`
	CustomerID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer          *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RepairmanID       *uuid.UUID       `gorm:"type:uuid;index" json:"repairman_id"` // nullable, set once the order is InProgress
	Repairman         *User            `gorm:"foreignKey:RepairmanID" json:"repairman,omitempty"`
	Status            OrderStatus      `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	RepairDate        *time.Time       `json:"repair_date"`
	RepairCompleted   *time.Time       `json:"repair_completed"`
	Total             *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	PaymentStatus     *bool            `json:"payment_status"`
	PaymentTerm       *time.Time       `json:"payment_term"`
	PaymentDate       *time.Time       `json:"payment_date"`
	CustomerNote      *string          `gorm:"type:text" json:"customer_note"`
	RatingNumber      *int             `json:"rating_number"`
	RatingDescription *string          `gorm:"type:text" json:"rating_description"`
	RatingTerm        *time.Time       `json:"rating_term"`
	RatingDate        *time.Time       `json:"rating_date"`
	OrderDetails      []OrderDetail    `gorm:"foreignKey:OrderID" json:"order_details,omitempty"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderDetail is one priced repair line of an order. It is never updated after creation.
type OrderDetail struct {
	Base
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	DeviceDetailID uuid.UUID       `gorm:"type:uuid;not null;index" json:"device_detail_id"`
	DeviceDetail   *DeviceDetail   `gorm:"foreignKey:DeviceDetailID" json:"device_detail,omitempty"`
	Description    *string         `gorm:"type:text" json:"description"`
	MinPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_price"`
	Image          *string         `json:"image"` // storage reference of the uploaded image, if any
	Video          *string         `json:"video"`
	ImageURL       *string         `gorm:"-" json:"image_url,omitempty"` // computed field, resolved by the media store
	VideoURL       *string         `gorm:"-" json:"video_url,omitempty"`
}

// TableName specifies the table name for the OrderDetail model
func (OrderDetail) TableName() string {
	return "order_details"
}
