package models

import (
	"fmt"

	"github.com/google/uuid"
)

// RepairmanFormStatus is the review state of an application to become a repairman
type RepairmanFormStatus string

const (
	RepairmanFormPending  RepairmanFormStatus = "Pending"
	RepairmanFormAccepted RepairmanFormStatus = "Accepted"
	RepairmanFormRejected RepairmanFormStatus = "Rejected"
)

// ParseRepairmanFormStatus converts s into a RepairmanFormStatus, rejecting unknown values
func ParseRepairmanFormStatus(s string) (RepairmanFormStatus, error) {
	status := RepairmanFormStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown repairman form status %q", s)
	}
	return status, nil
}

func (s RepairmanFormStatus) Valid() bool {
	switch s {
	case RepairmanFormPending, RepairmanFormAccepted, RepairmanFormRejected:
		return true
	}
	return false
}

// Decided reports whether an admin has already ruled on a form in status s
func (s RepairmanFormStatus) Decided() bool {
	return s == RepairmanFormAccepted || s == RepairmanFormRejected
}

// RepairmanForm is a user's application to work as a repairman. A user applies at most once.
type RepairmanForm struct {
	Base
	UserID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status RepairmanFormStatus  `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Areas  *string              `gorm:"type:text" json:"areas"` // districts the applicant is willing to serve
	Detail *RepairmanFormDetail `gorm:"foreignKey:RepairmanFormID" json:"detail,omitempty"`
}

// TableName specifies the table name for the RepairmanForm model
func (RepairmanForm) TableName() string {
	return "repairman_forms"
}

// RepairmanFormDetail holds the experience claimed in an application
type RepairmanFormDetail struct {
	Base
	RepairmanFormID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"repairman_form_id"`
	ServiceDeviceID   *uuid.UUID `gorm:"type:uuid;index" json:"service_device_id"`
	YearsOfExperience *int       `json:"years_of_experience"`
	Description       *string    `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for the RepairmanFormDetail model
func (RepairmanFormDetail) TableName() string {
	return "repairman_form_details"
}
