package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairhub/repairhub-api/services"
)

// ServiceController exposes the repair catalog
type ServiceController struct {
	catalog *services.CatalogService
	actors  *ActorResolver
}

func NewServiceController(catalog *services.CatalogService, actors *ActorResolver) *ServiceController {
	return &ServiceController{catalog: catalog, actors: actors}
}

// GetService handles GET /api/v1/services/:id - a service with its devices and details
func (ctl *ServiceController) GetService(c *gin.Context) {
	if _, _, ok := ctl.actors.Resolve(c); !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Service ID must be a valid UUID")
	if !ok {
		return
	}

	service, err := ctl.catalog.ServiceTree(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// DeleteService handles DELETE /api/v1/services/:id - removes the service, its devices and
// their details together (admins)
func (ctl *ServiceController) DeleteService(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Service ID must be a valid UUID")
	if !ok {
		return
	}

	result, err := ctl.catalog.DeleteServiceCascade(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err, "Failed to delete service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
