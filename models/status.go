package models

import "fmt"

// OrderStatus is the lifecycle position of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "InProgress"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCanceled   OrderStatus = "Canceled"
)

// orderTransitions lists, for every status, the statuses it may move to.
// InProgress -> InProgress lets a repairman update repair details without completing.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCanceled},
	OrderStatusInProgress: {OrderStatusInProgress, OrderStatusCompleted},
	OrderStatusCompleted:  {},
	OrderStatusCanceled:   {},
}

// ParseOrderStatus converts s into an OrderStatus, rejecting unknown values
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

// Valid reports whether s is one of the four order statuses
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition table allows s -> target
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// HasRepairman reports whether an order in status s is expected to carry a repairman
func (s OrderStatus) HasRepairman() bool {
	return s == OrderStatusInProgress || s == OrderStatusCompleted
}
