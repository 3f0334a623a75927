package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/services"
)

// ApplyRepairmanRequest represents the request body for applying to work as a repairman
type ApplyRepairmanRequest struct {
	UserID            *string `json:"user_id" binding:"omitempty,uuid"`
	Areas             *string `json:"areas"`
	ServiceDeviceID   *string `json:"service_device_id" binding:"omitempty,uuid"`
	YearsOfExperience *int    `json:"years_of_experience" binding:"omitempty,min=0"`
	Description       *string `json:"description"`
}

type DecideRepairmanFormRequest struct {
	Status string `json:"status" binding:"required"`
}

// RepairmanFormController exposes the repairman application flow
type RepairmanFormController struct {
	forms  *services.RepairmanFormService
	actors *ActorResolver
}

func NewRepairmanFormController(forms *services.RepairmanFormService, actors *ActorResolver) *RepairmanFormController {
	return &RepairmanFormController{forms: forms, actors: actors}
}

// Apply handles POST /api/v1/repairman-forms - files the caller's application
// (admins may file one for a customer with user_id)
func (ctl *RepairmanFormController) Apply(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	var req ApplyRepairmanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	// binding has already checked the uuid format
	input := services.ApplyInput{
		Areas:             req.Areas,
		YearsOfExperience: req.YearsOfExperience,
		Description:       req.Description,
	}
	if req.UserID != nil {
		id := uuid.MustParse(*req.UserID)
		input.UserID = &id
	}
	if req.ServiceDeviceID != nil {
		id := uuid.MustParse(*req.ServiceDeviceID)
		input.ServiceDeviceID = &id
	}

	form, err := ctl.forms.Apply(c.Request.Context(), actor, input)
	if err != nil {
		respondServiceError(c, err, "Failed to submit application")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    form,
	})
}

// ListForms handles GET /api/v1/repairman-forms - the review queue, oldest first,
// filterable by status (admins)
func (ctl *RepairmanFormController) ListForms(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	page, limit, ok := pageParams(c)
	if !ok {
		return
	}
	filter := repositories.RepairmanFormFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseRepairmanFormStatus(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		filter.Status = &status
	}

	result, err := ctl.forms.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch applications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Items,
		"pagination": pagination(page, limit, result.Total),
	})
}

// GetForm handles GET /api/v1/repairman-forms/:id (admins)
func (ctl *RepairmanFormController) GetForm(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Form ID must be a valid UUID")
	if !ok {
		return
	}

	form, err := ctl.forms.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch application")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    form,
	})
}

// DecideForm handles PATCH /api/v1/repairman-forms/:id/status - accepts or rejects a
// pending application (admins)
func (ctl *RepairmanFormController) DecideForm(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Form ID must be a valid UUID")
	if !ok {
		return
	}

	var req DecideRepairmanFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	status, err := models.ParseRepairmanFormStatus(req.Status)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, err := ctl.forms.Decide(c.Request.Context(), actor, id, status)
	if err != nil {
		respondServiceError(c, err, "Failed to update application")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    form,
	})
}
