package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// OrderFilter narrows an order listing; nil fields are not applied
type OrderFilter struct {
	CustomerID    *uuid.UUID
	RepairmanID   *uuid.UUID
	Status        *models.OrderStatus
	PaymentStatus *bool
	Offset        int
	Limit         int
}

// PeriodTotals holds a figure for today, the current week and the current month
type PeriodTotals[V any] struct {
	Today     V `json:"today"`
	ThisWeek  V `json:"this_week"`
	ThisMonth V `json:"this_month"`
}

// StatusCounts holds the number of orders per status
type StatusCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Canceled   int64 `json:"canceled"`
}

// OrderRepository adds order specific queries to the generic gateway
type OrderRepository struct {
	*Repository[models.Order]
}

// NewOrderRepository creates an OrderRepository over db
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{Repository: NewRepository[models.Order](db)}
}

// WithTx returns an OrderRepository whose statements run inside tx
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{Repository: r.Repository.WithTx(tx)}
}

// FindPage returns one page of orders matching filter, newest first, plus the total match count
func (r *OrderRepository) FindPage(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.DB(ctx).Model(&models.Order{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.RepairmanID != nil {
		query = query.Where("repairman_id = ?", *filter.RepairmanID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Order("created_at DESC").
		Order("id").
		Offset(normalizeOffset(filter.Offset)).
		Limit(NormalizeLimit(filter.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindDetail loads an order with its details and their catalog entries
func (r *OrderRepository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("OrderDetails.DeviceDetail").
		Preload("Customer").
		Preload("Repairman").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateWithDetails inserts the order and its OrderDetails; run it inside a transaction
func (r *OrderRepository) CreateWithDetails(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

// Revenue sums the totals of paid orders by payment date
func (r *OrderRepository) Revenue(ctx context.Context, now time.Time) (PeriodTotals[decimal.Decimal], error) {
	var totals PeriodTotals[decimal.Decimal]
	day, week, month := periodStarts(now)

	for _, p := range []struct {
		since time.Time
		dst   *decimal.Decimal
	}{
		{day, &totals.Today},
		{week, &totals.ThisWeek},
		{month, &totals.ThisMonth},
	} {
		var sum decimal.NullDecimal
		err := r.DB(ctx).Model(&models.Order{}).
			Select("SUM(total)").
			Where("payment_status = ? AND payment_date >= ?", true, p.since).
			Row().Scan(&sum)
		if err != nil {
			return totals, err
		}
		if sum.Valid {
			*p.dst = sum.Decimal
		}
	}

	return totals, nil
}

// NewOrderCounts counts orders created today, this week and this month
func (r *OrderRepository) NewOrderCounts(ctx context.Context, now time.Time) (PeriodTotals[int64], error) {
	var counts PeriodTotals[int64]
	day, week, month := periodStarts(now)

	for _, p := range []struct {
		since time.Time
		dst   *int64
	}{
		{day, &counts.Today},
		{week, &counts.ThisWeek},
		{month, &counts.ThisMonth},
	} {
		if err := r.DB(ctx).Model(&models.Order{}).Where("created_at >= ?", p.since).Count(p.dst).Error; err != nil {
			return counts, err
		}
	}

	return counts, nil
}

// StatusCounts counts orders per status
func (r *OrderRepository) StatusCounts(ctx context.Context) (StatusCounts, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.DB(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case models.OrderStatusPending:
			counts.Pending = row.Count
		case models.OrderStatusInProgress:
			counts.InProgress = row.Count
		case models.OrderStatusCompleted:
			counts.Completed = row.Count
		case models.OrderStatusCanceled:
			counts.Canceled = row.Count
		}
	}
	return counts, nil
}

// NormalizeLimit clamps a requested page size into [1, MaxPageLimit]
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// periodStarts returns the start of the day, the ISO week (Monday) and the month containing now
func periodStarts(now time.Time) (day, week, month time.Time) {
	day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	week = day.AddDate(0, 0, -offset)
	month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return day, week, month
}
