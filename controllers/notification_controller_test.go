package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/tests/testutil"
)

func TestDispatchNotification_Permissions(t *testing.T) {
	env := newTestEnv(t)
	customer := testutil.CreateUser(t, env.db, models.RoleCustomer, "customer")
	repairman := testutil.CreateUser(t, env.db, models.RoleRepairman, "repairman")
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin")

	body := gin.H{"title": "Maintenance tonight", "user_ids": []string{customer.ID.String()}}

	tests := []struct {
		path       string
		sender     models.User
		wantStatus int
	}{
		{"/api/v1/notifications/system", admin, http.StatusCreated},
		{"/api/v1/notifications/system", repairman, http.StatusForbidden},
		{"/api/v1/notifications/system", customer, http.StatusForbidden},
		{"/api/v1/notifications/order", admin, http.StatusCreated},
		{"/api/v1/notifications/order", repairman, http.StatusCreated},
		{"/api/v1/notifications/order", customer, http.StatusForbidden},
		{"/api/v1/notifications/register", admin, http.StatusCreated},
		{"/api/v1/notifications/register", repairman, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.sender.Role)+" "+tt.path, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.sender.Auth0ID, body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestDispatchNotification(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin")
	first := testutil.CreateUser(t, env.db, models.RoleCustomer, "first")
	second := testutil.CreateUser(t, env.db, models.RoleCustomer, "second")

	w := env.do(t, http.MethodPost, "/api/v1/notifications/system", admin.Auth0ID, gin.H{
		"title":       "New opening hours",
		"description": "We now open at 8.",
		"user_ids":    []string{first.ID.String(), second.ID.String(), first.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var notification models.Notification
	decodeData(t, w, &notification)
	assert.Equal(t, models.NotificationTypeSystem, notification.Type)
	assert.Equal(t, "New opening hours", notification.Title)

	var deliveries int64
	require.NoError(t, env.db.Model(&models.UserNotification{}).Where("notification_id = ?", notification.ID).Count(&deliveries).Error)
	assert.Equal(t, int64(2), deliveries, "duplicate recipients get one delivery")
}

func TestDispatchNotification_InvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin")

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing title", gin.H{"user_ids": []string{uuid.NewString()}}},
		{"blank title", gin.H{"title": "   ", "user_ids": []string{admin.ID.String()}}},
		{"no recipients", gin.H{"title": "Hello", "user_ids": []string{}}},
		{"bad recipient", gin.H{"title": "Hello", "user_ids": []string{"everyone"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/notifications/system", admin.Auth0ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListAndMarkNotifications(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin, "admin")
	customer := testutil.CreateUser(t, env.db, models.RoleCustomer, "customer")

	var ids []string
	for _, kind := range []string{"system", "order", "register"} {
		w := env.do(t, http.MethodPost, "/api/v1/notifications/"+kind, admin.Auth0ID, gin.H{
			"title":    kind + " news",
			"user_ids": []string{customer.ID.String()},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var n models.Notification
		decodeData(t, w, &n)
		ids = append(ids, n.ID.String())
	}

	w := env.do(t, http.MethodGet, "/api/v1/notifications", customer.Auth0ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox []models.UserNotification
	decodeData(t, w, &inbox)
	assert.Len(t, inbox, 3)
	assert.Contains(t, w.Body.String(), `"unread":3`)

	w = env.do(t, http.MethodGet, "/api/v1/notifications?type=Order", customer.Auth0ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationTypeOrder, inbox[0].Notification.Type)

	// Marking someone else's notification read changes nothing
	w = env.do(t, http.MethodPost, "/api/v1/notifications/read", admin.Auth0ID, gin.H{"notification_ids": ids[:1]})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":0`)

	w = env.do(t, http.MethodPost, "/api/v1/notifications/read", customer.Auth0ID, gin.H{"notification_ids": ids[:2]})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":2`)

	w = env.do(t, http.MethodGet, "/api/v1/notifications?is_read=false", customer.Auth0ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, ids[2], inbox[0].NotificationID.String())
	assert.Contains(t, w.Body.String(), `"unread":1`)
}

func TestListNotifications_InvalidFilters(t *testing.T) {
	env := newTestEnv(t)
	customer := testutil.CreateUser(t, env.db, models.RoleCustomer, "customer")

	for _, query := range []string{"?is_read=sometimes", "?type=Promo", "?limit=abc"} {
		w := env.do(t, http.MethodGet, "/api/v1/notifications"+query, customer.Auth0ID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}

	w := env.do(t, http.MethodPost, "/api/v1/notifications/read", customer.Auth0ID, gin.H{"notification_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
