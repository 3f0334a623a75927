package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the top level of the repair catalog (e.g. "Phone repair")
type Service struct {
	Base
	Name           string          `gorm:"not null" json:"name"`
	Description    *string         `gorm:"type:text" json:"description"`
	ServiceDevices []ServiceDevice `gorm:"foreignKey:ServiceID" json:"service_devices,omitempty"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ServiceDevice is a device kind offered under a service
type ServiceDevice struct {
	Base
	ServiceID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"service_id"`
	Name          string         `gorm:"not null" json:"name"`
	DeviceDetails []DeviceDetail `gorm:"foreignKey:ServiceDeviceID" json:"device_details,omitempty"`
}

// TableName specifies the table name for the ServiceDevice model
func (ServiceDevice) TableName() string {
	return "service_devices"
}

// DeviceDetail is a repairable fault of a device, with its minimum price
type DeviceDetail struct {
	Base
	ServiceDeviceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_device_id"`
	Name            string          `gorm:"not null" json:"name"`
	Description     *string         `gorm:"type:text" json:"description"`
	MinPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_price"`
}

// TableName specifies the table name for the DeviceDetail model
func (DeviceDetail) TableName() string {
	return "device_details"
}
