package services

import (
	"slices"

	"github.com/google/uuid"

	"github.com/repairhub/repairhub-api/models"
)

// Actor is the authenticated user an operation runs on behalf of
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// Operation names a guarded service operation
type Operation string

const (
	OpCreateOrder   Operation = "order.create"
	OpRateOrder     Operation = "order.rate"
	OpRepairOrder   Operation = "order.repair"
	OpPayOrder      Operation = "order.payment"
	OpCancelOrder   Operation = "order.cancel"
	OpListOrders    Operation = "order.list"
	OpGetOrder      Operation = "order.get"
	OpDeleteService Operation = "service.delete"
	OpViewDashboard Operation = "dashboard.view"

	OpApplyRepairman      Operation = "repairman_form.apply"
	OpReviewRepairmanForm Operation = "repairman_form.review"
)

var anyRole = []models.Role{models.RoleCustomer, models.RoleRepairman, models.RoleAdmin}

// permissions lists the roles allowed to run each operation.
// Ownership rules (a customer rating their own order) are checked by the operation itself.
var permissions = map[Operation][]models.Role{
	OpCreateOrder:   {models.RoleCustomer, models.RoleAdmin},
	OpRateOrder:     anyRole,
	OpRepairOrder:   {models.RoleAdmin, models.RoleRepairman},
	OpPayOrder:      {models.RoleAdmin, models.RoleRepairman},
	OpCancelOrder:   anyRole,
	OpListOrders:    anyRole,
	OpGetOrder:      anyRole,
	OpDeleteService: {models.RoleAdmin},
	OpViewDashboard: {models.RoleAdmin},

	OpApplyRepairman:      {models.RoleCustomer, models.RoleAdmin},
	OpReviewRepairmanForm: {models.RoleAdmin},
}

// dispatchPermissions lists the roles allowed to send each notification type
var dispatchPermissions = map[models.NotificationType][]models.Role{
	models.NotificationTypeSystem:   {models.RoleAdmin},
	models.NotificationTypeOrder:    {models.RoleAdmin, models.RoleRepairman},
	models.NotificationTypeRegister: {models.RoleAdmin},
}

// Authorize returns ErrPermission unless actor's role may run op
func Authorize(op Operation, actor Actor) error {
	if actor.UserID == uuid.Nil {
		return permissionError("%s requires an authenticated user", op)
	}
	if !slices.Contains(permissions[op], actor.Role) {
		return permissionError("role %q may not perform %s", actor.Role, op)
	}
	return nil
}

// AuthorizeDispatch returns ErrPermission unless actor's role may send notifications of type t
func AuthorizeDispatch(t models.NotificationType, actor Actor) error {
	if actor.UserID == uuid.Nil {
		return permissionError("dispatch requires an authenticated user")
	}
	if !slices.Contains(dispatchPermissions[t], actor.Role) {
		return permissionError("role %q may not send %s notifications", actor.Role, t)
	}
	return nil
}
