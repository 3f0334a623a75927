package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/services"
	"github.com/repairhub/repairhub-api/tests/testutil"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	media  *services.MockMediaStore
}

// newTestEnv mounts every controller on a router authenticated by testutil.TestUserHeader
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	media := services.NewMockMediaStore()

	notificationService := services.NewNotificationService(db)
	actors := NewActorResolver(db)
	orders := NewOrderController(services.NewOrderService(db, notificationService, media), actors)
	notifications := NewNotificationController(notificationService, actors)
	catalog := NewServiceController(services.NewCatalogService(db), actors)
	dashboard := NewDashboardController(services.NewDashboardService(db, services.NewMemoryCache(), time.Minute), actors)
	forms := NewRepairmanFormController(services.NewRepairmanFormService(db, notificationService), actors)

	router := testutil.CreateTestRouter()
	api := router.Group("/api/v1", testutil.HeaderAuthMiddleware())
	api.GET("/orders", orders.ListOrders)
	api.POST("/orders", orders.CreateOrder)
	api.GET("/orders/:id", orders.GetOrder)
	api.PATCH("/orders/:id/rate", orders.RateOrder)
	api.PATCH("/orders/:id/repair", orders.RepairOrder)
	api.POST("/orders/:id/payment", orders.PayOrder)
	api.POST("/orders/:id/cancel", orders.CancelOrder)
	api.GET("/notifications", notifications.ListNotifications)
	api.POST("/notifications/read", notifications.MarkRead)
	api.POST("/notifications/system", notifications.DispatchSystem)
	api.POST("/notifications/order", notifications.DispatchOrder)
	api.POST("/notifications/register", notifications.DispatchRegister)
	api.GET("/services/:id", catalog.GetService)
	api.DELETE("/services/:id", catalog.DeleteService)
	api.GET("/dashboard/statistics", dashboard.GetStatistics)
	api.GET("/repairman-forms", forms.ListForms)
	api.POST("/repairman-forms", forms.Apply)
	api.GET("/repairman-forms/:id", forms.GetForm)
	api.PATCH("/repairman-forms/:id/status", forms.DecideForm)

	return &testEnv{db: db, router: router, media: media}
}

// do sends a request as subject; body is JSON encoded unless it is a string
func (e *testEnv) do(t *testing.T, method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		payload.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&payload).Encode(b))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(testutil.TestUserHeader, subject)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.False(t, body.Success)
	return body
}

// decodeData unmarshals the data member of a success envelope into dst
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}
