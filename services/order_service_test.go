package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/tests/testutil"
)

type orderFixture struct {
	db        *gorm.DB
	svc       *OrderService
	media     *MockMediaStore
	customer  models.User
	other     models.User
	repairman models.User
	admin     models.User
	catalog   testutil.Catalog
}

func newOrderFixture(t *testing.T) *orderFixture {
	db := testutil.NewTestDB(t)
	media := NewMockMediaStore()

	return &orderFixture{
		db:        db,
		svc:       NewOrderService(db, NewNotificationService(db), media),
		media:     media,
		customer:  testutil.CreateUser(t, db, models.RoleCustomer, "customer"),
		other:     testutil.CreateUser(t, db, models.RoleCustomer, "other"),
		repairman: testutil.CreateUser(t, db, models.RoleRepairman, "repairman"),
		admin:     testutil.CreateUser(t, db, models.RoleAdmin, "admin"),
		catalog:   testutil.CreateCatalog(t, db, "phone", 1, 2),
	}
}

func (f *orderFixture) createOrder(t *testing.T, customer models.User) *models.Order {
	t.Helper()

	order, err := f.svc.Create(context.Background(), actorOf(customer), CreateOrderInput{
		AddressID: uuid.New(),
		Details: []OrderDetailInput{
			{DeviceDetailID: f.catalog.Details[0].ID},
			{DeviceDetailID: f.catalog.Details[1].ID},
		},
	})
	require.NoError(t, err)
	return order
}

// moveTo forces an order into status, bypassing the lifecycle rules
func (f *orderFixture) moveTo(t *testing.T, order *models.Order, status models.OrderStatus) {
	t.Helper()

	updates := map[string]interface{}{"status": status}
	if status.HasRepairman() {
		updates["repairman_id"] = f.repairman.ID
	}
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error)
}

func (f *orderFixture) reload(t *testing.T, id uuid.UUID) *models.Order {
	t.Helper()

	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", id).Error)
	return &order
}

func (f *orderFixture) notificationsOf(t *testing.T, user models.User) int64 {
	return countRows(t, f.db, &models.UserNotification{}, "user_id = ?", user.ID)
}

func TestOrderCreate_PricesDetailsFromCatalog(t *testing.T) {
	f := newOrderFixture(t)

	note := "screen cracked"
	order, err := f.svc.Create(context.Background(), actorOf(f.customer), CreateOrderInput{
		AddressID:    uuid.New(),
		CustomerNote: &note,
		Details: []OrderDetailInput{
			{DeviceDetailID: f.catalog.Details[0].ID, Description: ptr("front glass")},
			{DeviceDetailID: f.catalog.Details[1].ID},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, f.customer.ID, order.CustomerID)
	assert.Nil(t, order.RepairmanID)
	require.NotNil(t, order.Total)
	assert.True(t, decimal.NewFromInt(300).Equal(*order.Total), "total was %s", order.Total)

	stored := f.reload(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, "screen cracked", *stored.CustomerNote)

	var details []models.OrderDetail
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("min_price").Find(&details).Error)
	require.Len(t, details, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(details[0].MinPrice))
	assert.True(t, decimal.NewFromInt(200).Equal(details[1].MinPrice))
	assert.Equal(t, "front glass", *details[0].Description)
}

func TestOrderCreate_SkipsUnrecognizedMedia(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), actorOf(f.customer), CreateOrderInput{
		AddressID: uuid.New(),
		Details: []OrderDetailInput{
			{
				DeviceDetailID: f.catalog.Details[0].ID,
				Image:          dataURI("image/png", []byte("png bytes")),
			},
			{
				DeviceDetailID: f.catalog.Details[1].ID,
				Image:          dataURI("application/pdf", []byte("%PDF-1.4")),
				Video:          dataURI("video/mp4", []byte("mp4 bytes")),
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.OrderDetails, 2)

	first, second := order.OrderDetails[0], order.OrderDetails[1]
	require.NotNil(t, first.Image)
	assert.True(t, strings.HasPrefix(*first.Image, "orders/images/"))
	assert.True(t, strings.HasSuffix(*first.Image, ".png"))
	assert.Equal(t, []byte("png bytes"), f.media.Files()[*first.Image])

	assert.Nil(t, second.Image, "pdf payload should be skipped")
	require.NotNil(t, second.Video, "the other media field of the same detail is kept")
	assert.True(t, strings.HasPrefix(*second.Video, "orders/videos/"))

	assert.Equal(t, int64(2), countRows(t, f.db, &models.OrderDetail{}, "order_id = ?", order.ID))
	assert.Len(t, f.media.Files(), 2)
}

func TestOrderCreate_Validation(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name  string
		input CreateOrderInput
	}{
		{
			name:  "no details",
			input: CreateOrderInput{AddressID: uuid.New()},
		},
		{
			name: "unknown device detail",
			input: CreateOrderInput{
				AddressID: uuid.New(),
				Details: []OrderDetailInput{
					{DeviceDetailID: f.catalog.Details[0].ID},
					{DeviceDetailID: uuid.New()},
				},
			},
		},
		{
			name: "missing device detail id",
			input: CreateOrderInput{
				AddressID: uuid.New(),
				Details:   []OrderDetailInput{{}},
			},
		},
		{
			name: "missing address",
			input: CreateOrderInput{
				Details: []OrderDetailInput{{DeviceDetailID: f.catalog.Details[0].ID}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), actorOf(f.customer), tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Zero(t, countRows(t, f.db, &models.Order{}, ""))
	assert.Zero(t, countRows(t, f.db, &models.OrderDetail{}, ""))
}

func TestOrderCreate_CustomerSelection(t *testing.T) {
	f := newOrderFixture(t)
	detail := []OrderDetailInput{{DeviceDetailID: f.catalog.Details[0].ID}}

	order, err := f.svc.Create(context.Background(), actorOf(f.admin), CreateOrderInput{
		AddressID:  uuid.New(),
		CustomerID: &f.customer.ID,
		Details:    detail,
	})
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, order.CustomerID, "admin may create on a customer's behalf")

	order, err = f.svc.Create(context.Background(), actorOf(f.other), CreateOrderInput{
		AddressID:  uuid.New(),
		CustomerID: &f.customer.ID,
		Details:    detail,
	})
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, order.CustomerID, "customers always order for themselves")
}

func TestOrderCreate_CustomerRequiredFromAdmin(t *testing.T) {
	f := newOrderFixture(t)
	detail := []OrderDetailInput{{DeviceDetailID: f.catalog.Details[0].ID}}

	tests := []struct {
		name       string
		actor      models.User
		customerID *uuid.UUID
		wantErr    error
	}{
		{"admin without customer", f.admin, nil, ErrValidation},
		{"admin naming a repairman", f.admin, &f.repairman.ID, ErrValidation},
		{"admin naming an unknown user", f.admin, ptr(uuid.New()), ErrValidation},
		{"repairman", f.repairman, nil, ErrPermission},
		{"repairman naming a customer", f.repairman, &f.customer.ID, ErrPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), actorOf(tt.actor), CreateOrderInput{
				AddressID:  uuid.New(),
				CustomerID: tt.customerID,
				Details:    detail,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Zero(t, countRows(t, f.db, &models.Order{}, ""))
}

func TestOrderCreate_RollsBackAndDiscardsMedia(t *testing.T) {
	f := newOrderFixture(t)
	failOn(t, f.db, "create", "order_details")

	_, err := f.svc.Create(context.Background(), actorOf(f.customer), CreateOrderInput{
		AddressID: uuid.New(),
		Details: []OrderDetailInput{
			{DeviceDetailID: f.catalog.Details[0].ID, Image: dataURI("image/jpeg", []byte("jpg"))},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errInjected)

	assert.Zero(t, countRows(t, f.db, &models.Order{}, ""), "no partial order may remain")
	assert.Empty(t, f.media.Files(), "stored media is removed again")
}

func TestOrderCancel_PendingOnce(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)

	canceled, err := f.svc.Cancel(context.Background(), actorOf(f.customer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, canceled.Status)
	assert.Equal(t, models.OrderStatusCanceled, f.reload(t, order.ID).Status)
	assert.Equal(t, int64(1), f.notificationsOf(t, f.customer))

	_, err = f.svc.Cancel(context.Background(), actorOf(f.customer), order.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, models.OrderStatusCanceled, f.reload(t, order.ID).Status)
	assert.Equal(t, int64(1), f.notificationsOf(t, f.customer), "a failed cancel sends nothing")
}

func TestOrderCancel_OnlyFromPending(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusInProgress,
		models.OrderStatusCompleted,
		models.OrderStatusCanceled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newOrderFixture(t)
			order := f.createOrder(t, f.customer)
			f.moveTo(t, order, status)

			_, err := f.svc.Cancel(context.Background(), actorOf(f.admin), order.ID)
			assert.ErrorIs(t, err, ErrConflict)
			assert.Equal(t, status, f.reload(t, order.ID).Status)
		})
	}
}

func TestOrderCancel_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Cancel(context.Background(), actorOf(f.customer), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepair_CompletedIsFinal(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)
	f.moveTo(t, order, models.OrderStatusCompleted)

	targets := []*models.OrderStatus{
		nil,
		ptr(models.OrderStatusPending),
		ptr(models.OrderStatusInProgress),
		ptr(models.OrderStatusCompleted),
		ptr(models.OrderStatusCanceled),
	}
	for _, target := range targets {
		_, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{Status: target})
		require.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, err.Error(), "cannot repair a completed order")
	}
	assert.Equal(t, models.OrderStatusCompleted, f.reload(t, order.ID).Status)
}

func TestOrderRepair_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		target  models.OrderStatus
		wantErr error
	}{
		{"pending to in progress", models.OrderStatusPending, models.OrderStatusInProgress, nil},
		{"in progress stays in progress", models.OrderStatusInProgress, models.OrderStatusInProgress, nil},
		{"in progress to completed", models.OrderStatusInProgress, models.OrderStatusCompleted, nil},
		{"pending straight to completed", models.OrderStatusPending, models.OrderStatusCompleted, ErrConflict},
		{"back to pending", models.OrderStatusInProgress, models.OrderStatusPending, ErrConflict},
		{"canceled order", models.OrderStatusCanceled, models.OrderStatusInProgress, ErrConflict},
		{"pending to canceled", models.OrderStatusPending, models.OrderStatusCanceled, ErrConflict},
		{"pending stays pending", models.OrderStatusPending, models.OrderStatusPending, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			order := f.createOrder(t, f.customer)
			if tt.from != models.OrderStatusPending {
				f.moveTo(t, order, tt.from)
			}

			_, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{Status: &tt.target})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, f.reload(t, order.ID).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, f.reload(t, order.ID).Status)
		})
	}
}

func TestOrderRepair_CannotCancel(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)

	_, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{
		Status: ptr(models.OrderStatusCanceled),
	})
	assert.ErrorIs(t, err, ErrConflict)

	stored := f.reload(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.RepairmanID)
	assert.Zero(t, f.notificationsOf(t, f.customer))
	assert.Zero(t, f.notificationsOf(t, f.repairman))
}

func TestOrderRepair_RepairmanAssignsThemselves(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)
	repairDate := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	repaired, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{RepairDate: &repairDate})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusInProgress, repaired.Status)
	require.NotNil(t, repaired.RepairmanID)
	assert.Equal(t, f.repairman.ID, *repaired.RepairmanID)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.RepairmanID)
	assert.Equal(t, f.repairman.ID, *stored.RepairmanID)
	require.NotNil(t, stored.RepairDate)
	assert.True(t, repairDate.Equal(*stored.RepairDate))

	assert.Equal(t, int64(1), f.notificationsOf(t, f.customer))
	assert.Equal(t, int64(1), f.notificationsOf(t, f.repairman))
}

func TestOrderRepair_AdminMustNameRepairman(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)

	_, err := f.svc.Repair(context.Background(), actorOf(f.admin), order.ID, RepairInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Repair(context.Background(), actorOf(f.admin), order.ID, RepairInput{RepairmanID: &f.customer.ID})
	assert.ErrorIs(t, err, ErrValidation, "a customer cannot be the repairman")

	_, err = f.svc.Repair(context.Background(), actorOf(f.admin), order.ID, RepairInput{RepairmanID: ptr(uuid.New())})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.OrderStatusPending, f.reload(t, order.ID).Status)

	repaired, err := f.svc.Repair(context.Background(), actorOf(f.admin), order.ID, RepairInput{RepairmanID: &f.repairman.ID})
	require.NoError(t, err)
	assert.Equal(t, f.repairman.ID, *repaired.RepairmanID)
	assert.Equal(t, int64(0), f.notificationsOf(t, f.admin))
}

func TestOrderRepair_CompletionStampsAndNotifies(t *testing.T) {
	f := newOrderFixture(t)
	now := time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	order := f.createOrder(t, f.customer)
	f.moveTo(t, order, models.OrderStatusInProgress)

	completed, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{
		Status: ptr(models.OrderStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.RepairCompleted)
	assert.True(t, now.Equal(*completed.RepairCompleted))

	assert.Equal(t, int64(1), f.notificationsOf(t, f.customer))
	assert.Equal(t, int64(0), f.notificationsOf(t, f.repairman))
}

func TestOrderRepair_CompletionWithNewRepairmanNotifiesBoth(t *testing.T) {
	f := newOrderFixture(t)
	second := testutil.CreateUser(t, f.db, models.RoleRepairman, "second-repairman")

	order := f.createOrder(t, f.customer)
	f.moveTo(t, order, models.OrderStatusInProgress)

	completed, err := f.svc.Repair(context.Background(), actorOf(f.admin), order.ID, RepairInput{
		Status:      ptr(models.OrderStatusCompleted),
		RepairmanID: &second.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, *completed.RepairmanID)

	assert.Equal(t, int64(1), f.notificationsOf(t, f.customer))
	assert.Equal(t, int64(1), f.notificationsOf(t, second))
	assert.Zero(t, f.notificationsOf(t, f.repairman))

	var titles []string
	require.NoError(t, f.db.Model(&models.Notification{}).Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Order completed"}, titles)
}

func TestOrderRepair_TotalNeverDecreases(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer) // total 300

	_, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{
		Total: ptr(decimal.NewFromInt(250)),
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.OrderStatusPending, f.reload(t, order.ID).Status)

	repaired, err := f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{
		Total: ptr(decimal.RequireFromString("349.50")),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("349.50").Equal(*repaired.Total))

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.Total)
	assert.True(t, decimal.RequireFromString("349.50").Equal(*stored.Total))
}

func TestOrderRepair_Permissions(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.customer)

	_, err := f.svc.Repair(context.Background(), actorOf(f.customer), order.ID, RepairInput{})
	assert.ErrorIs(t, err, ErrPermission)

	_, err = f.svc.Repair(context.Background(), actorOf(f.repairman), order.ID, RepairInput{
		Status: ptr(models.OrderStatus("Shipped")),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Repair(context.Background(), actorOf(f.repairman), uuid.New(), RepairInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRate(t *testing.T) {
	f := newOrderFixture(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	order := f.createOrder(t, f.customer)
	f.moveTo(t, order, models.OrderStatusCompleted)

	rated, err := f.svc.Rate(context.Background(), actorOf(f.customer), order.ID, RateInput{
		Number:      5,
		Description: ptr("fast and friendly"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, *rated.RatingNumber)
	assert.True(t, now.Equal(*rated.RatingDate))

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.RatingNumber)
	assert.Equal(t, 5, *stored.RatingNumber)
	assert.Equal(t, "fast and friendly", *stored.RatingDescription)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status, "rating never changes status")

	tests := []struct {
		name    string
		actor   models.User
		id      uuid.UUID
		number  int
		wantErr error
	}{
		{"another customer", f.other, order.ID, 4, ErrPermission},
		{"the repairman", f.repairman, order.ID, 4, ErrPermission},
		{"rating too low", f.customer, order.ID, 0, ErrValidation},
		{"rating too high", f.customer, order.ID, 6, ErrValidation},
		{"unknown order", f.customer, uuid.New(), 3, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Rate(context.Background(), actorOf(tt.actor), tt.id, RateInput{Number: tt.number})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderPayment(t *testing.T) {
	f := newOrderFixture(t)
	now := time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	order := f.createOrder(t, f.customer)

	paid, err := f.svc.Payment(context.Background(), actorOf(f.repairman), order.ID, PaymentInput{Status: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, now.Equal(*paid.PaymentDate))
	assert.True(t, *f.reload(t, order.ID).PaymentStatus)

	explicit := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	paid, err = f.svc.Payment(context.Background(), actorOf(f.admin), order.ID, PaymentInput{Status: ptr(true), Date: &explicit})
	require.NoError(t, err)
	assert.True(t, explicit.Equal(*paid.PaymentDate))

	unpaid, err := f.svc.Payment(context.Background(), actorOf(f.admin), order.ID, PaymentInput{Status: ptr(false)})
	require.NoError(t, err)
	assert.Nil(t, unpaid.PaymentDate)

	_, err = f.svc.Payment(context.Background(), actorOf(f.customer), order.ID, PaymentInput{Status: ptr(true)})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestOrderList(t *testing.T) {
	f := newOrderFixture(t)
	for i := 0; i < 3; i++ {
		f.createOrder(t, f.customer)
	}
	otherOrder := f.createOrder(t, f.other)
	f.moveTo(t, otherOrder, models.OrderStatusInProgress)

	page, err := f.svc.List(context.Background(), actorOf(f.customer), repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	for _, o := range page.Items {
		assert.Equal(t, f.customer.ID, o.CustomerID)
	}

	page, err = f.svc.List(context.Background(), actorOf(f.customer), repositories.OrderFilter{CustomerID: &f.other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total, "customers cannot widen the filter to other customers")

	page, err = f.svc.List(context.Background(), actorOf(f.admin), repositories.OrderFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Items, 2)

	inProgress := models.OrderStatusInProgress
	page, err = f.svc.List(context.Background(), actorOf(f.repairman), repositories.OrderFilter{Status: &inProgress})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, otherOrder.ID, page.Items[0].ID)

	bogus := models.OrderStatus("Lost")
	_, err = f.svc.List(context.Background(), actorOf(f.admin), repositories.OrderFilter{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderGet(t *testing.T) {
	f := newOrderFixture(t)

	created, err := f.svc.Create(context.Background(), actorOf(f.customer), CreateOrderInput{
		AddressID: uuid.New(),
		Details: []OrderDetailInput{
			{DeviceDetailID: f.catalog.Details[0].ID, Image: dataURI("image/png", []byte("png"))},
		},
	})
	require.NoError(t, err)

	order, err := f.svc.Get(context.Background(), actorOf(f.customer), created.ID)
	require.NoError(t, err)
	require.Len(t, order.OrderDetails, 1)

	detail := order.OrderDetails[0]
	require.NotNil(t, detail.DeviceDetail)
	assert.Equal(t, f.catalog.Details[0].Name, detail.DeviceDetail.Name)
	require.NotNil(t, detail.ImageURL)
	assert.Contains(t, *detail.ImageURL, *detail.Image)
	assert.Nil(t, detail.VideoURL)
	require.NotNil(t, order.Customer)
	assert.Equal(t, f.customer.Email, order.Customer.Email)

	_, err = f.svc.Get(context.Background(), actorOf(f.other), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Get(context.Background(), actorOf(f.repairman), created.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), Actor{Role: models.RoleAdmin}, created.ID)
	assert.ErrorIs(t, err, ErrPermission, "an actor without a user id is not authenticated")
}
