package models

// Role is the authorization role of a user
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleRepairman Role = "repairman"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRepairman, RoleAdmin:
		return true
	}
	return false
}

// User represents a user in the system (customer, repairman or admin)
type User struct {
	Base
	Auth0ID  string `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	FullName string `gorm:"not null" json:"full_name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
