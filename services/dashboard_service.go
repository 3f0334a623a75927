package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/repositories"
)

// DashboardStatisticsKey is the cache key of the dashboard figures
const DashboardStatisticsKey = "dashboard:statistics"

// DashboardStatistics are the figures shown on the admin dashboard
type DashboardStatistics struct {
	Revenue     repositories.PeriodTotals[decimal.Decimal] `json:"revenue"`
	NewOrders   repositories.PeriodTotals[int64]           `json:"new_orders"`
	Orders      repositories.StatusCounts                  `json:"orders"`
	TotalUsers  int64                                      `json:"total_users"`
	GeneratedAt time.Time                                  `json:"generated_at"`
}

// DashboardService aggregates order statistics for administrators
type DashboardService struct {
	orders *repositories.OrderRepository
	users  *repositories.UserRepository
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
}

func NewDashboardService(db *gorm.DB, cache Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{
		orders: repositories.NewOrderRepository(db),
		users:  repositories.NewUserRepository(db),
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Statistics returns the dashboard figures, served from the cache while fresh
func (s *DashboardService) Statistics(ctx context.Context, actor Actor) (*DashboardStatistics, error) {
	if err := Authorize(OpViewDashboard, actor); err != nil {
		return nil, err
	}

	if stats, ok := s.cached(ctx); ok {
		return stats, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, DashboardStatisticsKey, raw, s.ttl); err != nil {
				config.Logger().Warn("failed to cache dashboard statistics", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *DashboardService) cached(ctx context.Context) (*DashboardStatistics, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, DashboardStatisticsKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			config.Logger().Warn("dashboard cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var stats DashboardStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		config.Logger().Warn("discarding unreadable dashboard cache entry", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStatistics, error) {
	now := s.now()

	revenue, err := s.orders.Revenue(ctx, now)
	if err != nil {
		return nil, NewStorageError("sum revenue", err)
	}
	newOrders, err := s.orders.NewOrderCounts(ctx, now)
	if err != nil {
		return nil, NewStorageError("count new orders", err)
	}
	statusCounts, err := s.orders.StatusCounts(ctx)
	if err != nil {
		return nil, NewStorageError("count orders by status", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, NewStorageError("count users", err)
	}

	return &DashboardStatistics{
		Revenue:     revenue,
		NewOrders:   newOrders,
		Orders:      statusCounts,
		TotalUsers:  users,
		GeneratedAt: now,
	}, nil
}
