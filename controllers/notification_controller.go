package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/services"
)

// DispatchNotificationRequest represents the request body for sending a notification
type DispatchNotificationRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	UserIDs     []string `json:"user_ids" binding:"required,min=1,dive,uuid"`
}

// MarkReadRequest lists the notifications to mark as read
type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,min=1,dive,uuid"`
}

// NotificationController exposes notification fan-out and the user's inbox
type NotificationController struct {
	notifications *services.NotificationService
	actors        *ActorResolver
}

func NewNotificationController(notifications *services.NotificationService, actors *ActorResolver) *NotificationController {
	return &NotificationController{notifications: notifications, actors: actors}
}

// ListNotifications handles GET /api/v1/notifications - the caller's notifications,
// newest first unless sort=oldest, filterable by is_read and type
func (ctl *NotificationController) ListNotifications(c *gin.Context) {
	_, user, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	page, limit, ok := pageParams(c)
	if !ok {
		return
	}
	filter := repositories.NotificationFilter{
		Oldest: c.Query("sort") == "oldest",
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if raw := c.Query("is_read"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_read must be true or false")
			return
		}
		filter.IsRead = &isRead
	}
	if raw := c.Query("type"); raw != "" {
		kind := models.NotificationType(raw)
		filter.Type = &kind
	}

	result, err := ctl.notifications.GetForUser(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch notifications")
		return
	}
	unread, err := ctl.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Items,
		"unread":     unread,
		"pagination": pagination(page, limit, result.Total),
	})
}

// MarkRead handles POST /api/v1/notifications/read - ids not addressed to the caller are ignored
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	_, user, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := ctl.notifications.MarkRead(c.Request.Context(), user.ID, parseUUIDs(req.NotificationIDs))
	if err != nil {
		respondServiceError(c, err, "Failed to update notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"updated": updated,
		},
	})
}

// DispatchSystem handles POST /api/v1/notifications/system (admins)
func (ctl *NotificationController) DispatchSystem(c *gin.Context) {
	ctl.dispatch(c, models.NotificationTypeSystem)
}

// DispatchOrder handles POST /api/v1/notifications/order (admins and repairmen)
func (ctl *NotificationController) DispatchOrder(c *gin.Context) {
	ctl.dispatch(c, models.NotificationTypeOrder)
}

// DispatchRegister handles POST /api/v1/notifications/register (admins)
func (ctl *NotificationController) DispatchRegister(c *gin.Context) {
	ctl.dispatch(c, models.NotificationTypeRegister)
}

func (ctl *NotificationController) dispatch(c *gin.Context, kind models.NotificationType) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	if err := services.AuthorizeDispatch(kind, actor); err != nil {
		respondServiceError(c, err, "Failed to send notification")
		return
	}

	var req DispatchNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	notification, err := ctl.notifications.Dispatch(c.Request.Context(), services.DispatchInput{
		Type:         kind,
		Title:        req.Title,
		Description:  req.Description,
		RecipientIDs: parseUUIDs(req.UserIDs),
	})
	if err != nil {
		respondServiceError(c, err, "Failed to send notification")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    notification,
	})
}

// parseUUIDs converts ids already checked by the uuid binding
func parseUUIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
