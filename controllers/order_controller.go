package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/services"
)

// OrderDetailRequest is one repair line of a new order. Image and video are base64 data URIs.
type OrderDetailRequest struct {
	DeviceDetailID string  `json:"device_detail_id" binding:"required,uuid"`
	Description    *string `json:"description"`
	Image          *string `json:"image"`
	Video          *string `json:"video"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	AddressID    string               `json:"address_id" binding:"required,uuid"`
	CustomerID   *string              `json:"customer_id" binding:"omitempty,uuid"`
	RepairDate   *time.Time           `json:"repair_date"`
	CustomerNote *string              `json:"customer_note"`
	Details      []OrderDetailRequest `json:"details" binding:"required,min=1,dive"`
}

type RateOrderRequest struct {
	RatingNumber      int        `json:"rating_number" binding:"required,min=1,max=5"`
	RatingDescription *string    `json:"rating_description"`
	RatingTerm        *time.Time `json:"rating_term"`
	RatingDate        *time.Time `json:"rating_date"`
}

type RepairOrderRequest struct {
	Status          *string          `json:"status"`
	RepairmanID     *string          `json:"repairman_id" binding:"omitempty,uuid"`
	RepairDate      *time.Time       `json:"repair_date"`
	RepairCompleted *time.Time       `json:"repair_completed"`
	Total           *decimal.Decimal `json:"total"`
}

type PaymentOrderRequest struct {
	PaymentStatus *bool      `json:"payment_status" binding:"required"`
	PaymentTerm   *time.Time `json:"payment_term"`
	PaymentDate   *time.Time `json:"payment_date"`
}

// OrderController exposes the order lifecycle over HTTP
type OrderController struct {
	orders *services.OrderService
	actors *ActorResolver
}

func NewOrderController(orders *services.OrderService, actors *ActorResolver) *OrderController {
	return &OrderController{orders: orders, actors: actors}
}

// ListOrders handles GET /api/v1/orders - paginated, filterable by customer_id, repairman_id,
// status and payment_status. Customers only see their own orders.
func (ctl *OrderController) ListOrders(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	page, limit, ok := pageParams(c)
	if !ok {
		return
	}
	filter := repositories.OrderFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	var err error
	if filter.CustomerID, err = optionalUUIDQuery(c, "customer_id"); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "customer_id must be a UUID")
		return
	}
	if filter.RepairmanID, err = optionalUUIDQuery(c, "repairman_id"); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "repairman_id must be a UUID")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("payment_status"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_status must be true or false")
			return
		}
		filter.PaymentStatus = &paid
	}

	result, err := ctl.orders.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Items,
		"pagination": pagination(page, limit, result.Total),
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns an order with its details
func (ctl *OrderController) GetOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := ctl.orders.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateOrder handles POST /api/v1/orders - opens a Pending order
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	// binding has already checked the uuid format
	input := services.CreateOrderInput{
		AddressID:    uuid.MustParse(req.AddressID),
		RepairDate:   req.RepairDate,
		CustomerNote: req.CustomerNote,
	}
	if req.CustomerID != nil {
		customerID := uuid.MustParse(*req.CustomerID)
		input.CustomerID = &customerID
	}
	for _, d := range req.Details {
		input.Details = append(input.Details, services.OrderDetailInput{
			DeviceDetailID: uuid.MustParse(d.DeviceDetailID),
			Description:    d.Description,
			Image:          d.Image,
			Video:          d.Video,
		})
	}

	order, err := ctl.orders.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondServiceError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// RateOrder handles PATCH /api/v1/orders/:id/rate - the customer rates their order
func (ctl *OrderController) RateOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req RateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := ctl.orders.Rate(c.Request.Context(), actor, id, services.RateInput{
		Number:      req.RatingNumber,
		Description: req.RatingDescription,
		Term:        req.RatingTerm,
		Date:        req.RatingDate,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to rate order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// RepairOrder handles PATCH /api/v1/orders/:id/repair - admins and repairmen move the order forward
func (ctl *OrderController) RepairOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req RepairOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	input := services.RepairInput{
		RepairDate:      req.RepairDate,
		RepairCompleted: req.RepairCompleted,
		Total:           req.Total,
	}
	if req.Status != nil {
		status, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		input.Status = &status
	}
	if req.RepairmanID != nil {
		repairmanID := uuid.MustParse(*req.RepairmanID)
		input.RepairmanID = &repairmanID
	}

	order, err := ctl.orders.Repair(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err, "Failed to update repair")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// PayOrder handles POST /api/v1/orders/:id/payment - records the payment state
func (ctl *OrderController) PayOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req PaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := ctl.orders.Payment(c.Request.Context(), actor, id, services.PaymentInput{
		Status: req.PaymentStatus,
		Term:   req.PaymentTerm,
		Date:   req.PaymentDate,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to update payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - cancels a Pending order
func (ctl *OrderController) CancelOrder(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := ctl.orders.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	return uuidParam(c, "id", "Order ID must be a valid UUID")
}

func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
