package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/utils"
)

// OrderDetailInput is one requested repair line. Image and Video are base64 data URIs.
type OrderDetailInput struct {
	DeviceDetailID uuid.UUID `json:"device_detail_id"`
	Description    *string   `json:"description"`
	Image          *string   `json:"image"`
	Video          *string   `json:"video"`
}

// CreateOrderInput is the request to open a new order.
// CustomerID is required when an admin creates an order on a customer's behalf and ignored otherwise.
type CreateOrderInput struct {
	AddressID    uuid.UUID          `json:"address_id"`
	CustomerID   *uuid.UUID         `json:"customer_id"`
	RepairDate   *time.Time         `json:"repair_date"`
	CustomerNote *string            `json:"customer_note"`
	Details      []OrderDetailInput `json:"details"`
}

type RateInput struct {
	Number      int        `json:"rating_number"`
	Description *string    `json:"rating_description"`
	Term        *time.Time `json:"rating_term"`
	Date        *time.Time `json:"rating_date"`
}

// RepairInput updates the repair fields of an order. A nil Status means InProgress.
type RepairInput struct {
	Status          *models.OrderStatus `json:"status"`
	RepairmanID     *uuid.UUID          `json:"repairman_id"`
	RepairDate      *time.Time          `json:"repair_date"`
	RepairCompleted *time.Time          `json:"repair_completed"`
	Total           *decimal.Decimal    `json:"total"`
}

type PaymentInput struct {
	Status *bool      `json:"payment_status"`
	Term   *time.Time `json:"payment_term"`
	Date   *time.Time `json:"payment_date"`
}

// OrderPage is one page of an order listing
type OrderPage struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
}

// OrderService drives orders through their lifecycle
type OrderService struct {
	tx            repositories.TxManager
	orders        *repositories.OrderRepository
	catalog       *repositories.CatalogRepository
	users         *repositories.UserRepository
	notifications *NotificationService
	media         MediaStore
	now           func() time.Time
}

func NewOrderService(db *gorm.DB, notifications *NotificationService, media MediaStore) *OrderService {
	return &OrderService{
		tx:            repositories.NewTxManager(db),
		orders:        repositories.NewOrderRepository(db),
		catalog:       repositories.NewCatalogRepository(db),
		users:         repositories.NewUserRepository(db),
		notifications: notifications,
		media:         media,
		now:           time.Now,
	}
}

// Create opens a Pending order. Each detail takes its minimum price from the catalog and
// the order total is their sum. A media payload that cannot be decoded is dropped from its
// detail without failing the order.
func (s *OrderService) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error) {
	if err := Authorize(OpCreateOrder, actor); err != nil {
		return nil, err
	}
	if len(input.Details) == 0 {
		return nil, validationError("an order needs at least one detail")
	}
	if input.AddressID == uuid.Nil {
		return nil, validationError("address_id is required")
	}

	customerID := actor.UserID
	if actor.Role == models.RoleAdmin {
		if input.CustomerID == nil || *input.CustomerID == uuid.Nil {
			return nil, validationError("customer_id is required when an admin creates an order")
		}
		if err := s.checkCustomer(ctx, *input.CustomerID); err != nil {
			return nil, err
		}
		customerID = *input.CustomerID
	}

	catalogRows, err := s.resolveDeviceDetails(ctx, input.Details)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		AddressID:    input.AddressID,
		CustomerID:   customerID,
		Status:       models.OrderStatusPending,
		RepairDate:   input.RepairDate,
		CustomerNote: input.CustomerNote,
	}

	var stored []string
	total := decimal.Zero
	for i, in := range input.Details {
		catalogRow := catalogRows[in.DeviceDetailID]
		detail := models.OrderDetail{
			DeviceDetailID: in.DeviceDetailID,
			Description:    in.Description,
			MinPrice:       catalogRow.MinPrice,
		}
		detail.Image = s.storeMedia(ctx, in.Image, utils.MediaKindImage, i, &stored)
		detail.Video = s.storeMedia(ctx, in.Video, utils.MediaKindVideo, i, &stored)

		total = total.Add(catalogRow.MinPrice)
		order.OrderDetails = append(order.OrderDetails, detail)
	}
	order.Total = &total

	err = s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		return s.orders.WithTx(tx).CreateWithDetails(ctx, order)
	})
	if err != nil {
		s.discardMedia(ctx, stored)
		return nil, NewStorageError("create order", err)
	}

	config.Logger().Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Int("details", len(order.OrderDetails)),
		zap.String("total", total.StringFixed(2)),
	)
	return order, nil
}

// resolveDeviceDetails loads the catalog row of every requested detail
func (s *OrderService) resolveDeviceDetails(ctx context.Context, details []OrderDetailInput) (map[uuid.UUID]models.DeviceDetail, error) {
	ids := make([]uuid.UUID, 0, len(details))
	for _, d := range details {
		if d.DeviceDetailID == uuid.Nil {
			return nil, validationError("device_detail_id is required for every detail")
		}
		ids = append(ids, d.DeviceDetailID)
	}

	rows, err := s.catalog.DeviceDetails.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, NewStorageError("load device details", err)
	}

	byID := make(map[uuid.UUID]models.DeviceDetail, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, validationError("device detail %s does not exist", id)
		}
	}
	return byID, nil
}

// storeMedia decodes and stores one media payload, returning its reference.
// Payloads of the wrong kind or that fail to decode or store are skipped.
func (s *OrderService) storeMedia(ctx context.Context, payload *string, kind string, index int, stored *[]string) *string {
	if payload == nil || *payload == "" {
		return nil
	}

	logger := config.Logger().With(zap.String("kind", kind), zap.Int("detail_index", index))

	uri, err := utils.ParseDataURI(*payload, kind)
	if err != nil {
		logger.Warn("skipping order detail media", zap.Error(err))
		return nil
	}

	key := utils.MediaFolder(kind) + "/" + uuid.NewString() + uri.Extension
	ref, err := s.media.Save(ctx, key, uri.ContentType, uri.Data)
	if err != nil {
		logger.Error("failed to store order detail media", zap.Error(err))
		return nil
	}

	*stored = append(*stored, ref)
	return &ref
}

func (s *OrderService) discardMedia(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.media.Delete(ctx, ref); err != nil {
			config.Logger().Warn("failed to remove media of unsaved order", zap.String("ref", ref), zap.Error(err))
		}
	}
}

// Rate records the customer's rating. Any status may be rated.
func (s *OrderService) Rate(ctx context.Context, actor Actor, id uuid.UUID, input RateInput) (*models.Order, error) {
	if err := Authorize(OpRateOrder, actor); err != nil {
		return nil, err
	}
	if input.Number < 1 || input.Number > 5 {
		return nil, validationError("rating_number must be between 1 and 5")
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("order", id, err)
	}
	if order.CustomerID != actor.UserID {
		return nil, permissionError("only the customer of an order may rate it")
	}

	ratingDate := s.now()
	if input.Date != nil {
		ratingDate = *input.Date
	}

	number := input.Number
	order.RatingNumber = &number
	order.RatingDescription = input.Description
	order.RatingTerm = input.Term
	order.RatingDate = &ratingDate

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, NewStorageError("rate order", err)
	}
	return order, nil
}

// Repair moves an order to InProgress or Completed and updates its repair fields.
// Completed and canceled orders are final, and canceling goes through Cancel only.
// Assigning or changing the repairman, or completing the order, notifies the people involved
// in the same transaction.
func (s *OrderService) Repair(ctx context.Context, actor Actor, id uuid.UUID, input RepairInput) (*models.Order, error) {
	if err := Authorize(OpRepairOrder, actor); err != nil {
		return nil, err
	}

	target := models.OrderStatusInProgress
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, validationError("unknown order status %q", *input.Status)
		}
		target = *input.Status
	}

	var order *models.Order
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return lookupError("order", id, err)
		}

		if order.Status.IsTerminal() {
			return conflictError("cannot repair a %s order", strings.ToLower(string(order.Status)))
		}
		if !target.HasRepairman() {
			return conflictError("repair cannot move an order to %s", target)
		}
		if !order.Status.CanTransitionTo(target) {
			return conflictError("cannot move order from %s to %s", order.Status, target)
		}

		previousRepairman := order.RepairmanID
		repairmanID := order.RepairmanID
		if input.RepairmanID != nil {
			if err := s.checkRepairman(ctx, tx, *input.RepairmanID); err != nil {
				return err
			}
			repairmanID = input.RepairmanID
		} else if repairmanID == nil && actor.Role == models.RoleRepairman {
			self := actor.UserID
			repairmanID = &self
		}
		if target.HasRepairman() && repairmanID == nil {
			return validationError("a repairman must be assigned before the order is %s", target)
		}

		if input.Total != nil {
			if input.Total.IsNegative() {
				return validationError("total must not be negative")
			}
			if order.Total != nil && input.Total.LessThan(*order.Total) {
				return validationError("total must not decrease (current %s)", order.Total.StringFixed(2))
			}
			total := *input.Total
			order.Total = &total
		}

		if input.RepairDate != nil {
			order.RepairDate = input.RepairDate
		}
		completing := target == models.OrderStatusCompleted && order.Status != models.OrderStatusCompleted
		if completing {
			completedAt := s.now()
			if input.RepairCompleted != nil {
				completedAt = *input.RepairCompleted
			}
			order.RepairCompleted = &completedAt
		}

		order.Status = target
		order.RepairmanID = repairmanID
		if err := s.orders.WithTx(tx).Update(ctx, order); err != nil {
			return NewStorageError("repair order", err)
		}

		assigned := !sameID(previousRepairman, repairmanID)
		switch {
		case completing:
			recipients := []uuid.UUID{order.CustomerID}
			if assigned {
				recipients = append(recipients, *repairmanID)
			}
			return s.notify(ctx, tx, order, "Order completed",
				"The repair of your order is complete.", recipients...)
		case assigned:
			return s.notify(ctx, tx, order, "Repairman assigned",
				"A repairman has been assigned to the order.", order.CustomerID, *repairmanID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger().Info("order repaired",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.String("actor_id", actor.UserID.String()),
	)
	return order, nil
}

func (s *OrderService) checkRepairman(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return checkRole(ctx, s.users.WithTx(tx), id, models.RoleRepairman)
}

func (s *OrderService) checkCustomer(ctx context.Context, id uuid.UUID) error {
	return checkRole(ctx, s.users, id, models.RoleCustomer)
}

// checkRole fails with ErrValidation unless user id exists and has role
func checkRole(ctx context.Context, users *repositories.UserRepository, id uuid.UUID, role models.Role) error {
	user, err := users.FindByID(ctx, id)
	if repositories.IsNotFound(err) {
		return validationError("%s %s does not exist", role, id)
	}
	if err != nil {
		return NewStorageError("load "+string(role), err)
	}
	if user.Role != role {
		return validationError("user %s is not a %s", id, role)
	}
	return nil
}

// Payment overwrites the payment fields. A paid order without a payment date is stamped now.
func (s *OrderService) Payment(ctx context.Context, actor Actor, id uuid.UUID, input PaymentInput) (*models.Order, error) {
	if err := Authorize(OpPayOrder, actor); err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("order", id, err)
	}

	order.PaymentStatus = input.Status
	order.PaymentTerm = input.Term
	order.PaymentDate = input.Date
	if input.Status != nil && *input.Status && input.Date == nil {
		paidAt := s.now()
		order.PaymentDate = &paidAt
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, NewStorageError("update payment", err)
	}
	return order, nil
}

// Cancel cancels a Pending order and notifies its customer. Any other status is a conflict.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if err := Authorize(OpCancelOrder, actor); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return lookupError("order", id, err)
		}
		if order.Status != models.OrderStatusPending {
			return conflictError("only pending orders can be canceled (status %s)", order.Status)
		}

		order.Status = models.OrderStatusCanceled
		if err := s.orders.WithTx(tx).Update(ctx, order); err != nil {
			return NewStorageError("cancel order", err)
		}
		return s.notify(ctx, tx, order, "Order canceled", "The order has been canceled.", order.CustomerID)
	})
	if err != nil {
		return nil, err
	}

	config.Logger().Info("order canceled",
		zap.String("order_id", order.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	return order, nil
}

// List returns a page of orders. Customers only ever see their own orders.
func (s *OrderService) List(ctx context.Context, actor Actor, filter repositories.OrderFilter) (*OrderPage, error) {
	if err := Authorize(OpListOrders, actor); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationError("unknown order status %q", *filter.Status)
	}
	if actor.Role == models.RoleCustomer {
		self := actor.UserID
		filter.CustomerID = &self
	}

	orders, total, err := s.orders.FindPage(ctx, filter)
	if err != nil {
		return nil, NewStorageError("list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{Items: orders, Total: total}, nil
}

// Get returns an order with its details and media URLs
func (s *OrderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if err := Authorize(OpGetOrder, actor); err != nil {
		return nil, err
	}

	order, err := s.orders.FindDetail(ctx, id)
	if err != nil {
		return nil, lookupError("order", id, err)
	}
	if actor.Role == models.RoleCustomer && order.CustomerID != actor.UserID {
		// other customers' orders are reported as missing
		return nil, notFoundError("order", id)
	}

	for i := range order.OrderDetails {
		detail := &order.OrderDetails[i]
		detail.ImageURL = s.mediaURL(ctx, detail.Image)
		detail.VideoURL = s.mediaURL(ctx, detail.Video)
	}
	return order, nil
}

func (s *OrderService) mediaURL(ctx context.Context, ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	url, err := s.media.URL(ctx, *ref)
	if err != nil {
		config.Logger().Warn("failed to resolve media URL", zap.String("ref", *ref), zap.Error(err))
		return nil
	}
	return &url
}

func (s *OrderService) notify(ctx context.Context, tx *gorm.DB, order *models.Order, title, description string, recipients ...uuid.UUID) error {
	if s.notifications == nil {
		return nil
	}
	text := description + " Order " + order.ID.String() + "."
	_, err := s.notifications.DispatchTx(ctx, tx, DispatchInput{
		Type:         models.NotificationTypeOrder,
		Title:        title,
		Description:  &text,
		RecipientIDs: recipients,
	})
	return err
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
