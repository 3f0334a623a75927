package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairhub/repairhub-api/services"
)

type DashboardController struct {
	dashboard *services.DashboardService
	actors    *ActorResolver
}

func NewDashboardController(dashboard *services.DashboardService, actors *ActorResolver) *DashboardController {
	return &DashboardController{dashboard: dashboard, actors: actors}
}

// GetStatistics handles GET /api/v1/dashboard/statistics (admins)
func (ctl *DashboardController) GetStatistics(c *gin.Context) {
	actor, _, ok := ctl.actors.Resolve(c)
	if !ok {
		return
	}

	stats, err := ctl.dashboard.Statistics(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err, "Failed to compute statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
