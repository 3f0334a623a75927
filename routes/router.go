package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/controllers"
	"github.com/repairhub/repairhub-api/middleware"
	"github.com/repairhub/repairhub-api/services"
)

// Deps carries everything the HTTP layer is built from. Auth guards every route below
// the public health, status and media endpoints.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Media  services.MediaStore
	Cache  services.Cache
	Auth   gin.HandlerFunc
	Logger *zap.Logger
}

// New wires controllers and middleware onto a new gin engine
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.Config.CORSAllowedOrigins)))

	notificationService := services.NewNotificationService(deps.DB)
	orderService := services.NewOrderService(deps.DB, notificationService, deps.Media)
	catalogService := services.NewCatalogService(deps.DB)
	dashboardService := services.NewDashboardService(deps.DB, deps.Cache, deps.Config.DashboardCacheTTL)
	repairmanFormService := services.NewRepairmanFormService(deps.DB, notificationService)

	actors := controllers.NewActorResolver(deps.DB)
	orderController := controllers.NewOrderController(orderService, actors)
	notificationController := controllers.NewNotificationController(notificationService, actors)
	serviceController := controllers.NewServiceController(catalogService, actors)
	dashboardController := controllers.NewDashboardController(dashboardService, actors)
	repairmanFormController := controllers.NewRepairmanFormController(repairmanFormService, actors)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(deps.DB))

		if deps.Config.StorageDriver == config.StorageDriverLocal {
			v1.GET("/uploads/orders/:kind/:filename", controllers.GetUploadedMedia)
		}

		protected := v1.Group("")
		protected.Use(deps.Auth)
		{
			orders := protected.Group("/orders")
			{
				orders.GET("", orderController.ListOrders)
				orders.POST("", orderController.CreateOrder)
				orders.GET("/:id", orderController.GetOrder)
				orders.PATCH("/:id/rate", orderController.RateOrder)
				orders.PATCH("/:id/repair", orderController.RepairOrder)
				orders.POST("/:id/payment", orderController.PayOrder)
				orders.POST("/:id/cancel", orderController.CancelOrder)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationController.ListNotifications)
				notifications.POST("/read", notificationController.MarkRead)
				notifications.POST("/system", notificationController.DispatchSystem)
				notifications.POST("/order", notificationController.DispatchOrder)
				notifications.POST("/register", notificationController.DispatchRegister)
			}

			protected.GET("/services/:id", serviceController.GetService)
			protected.DELETE("/services/:id", serviceController.DeleteService)

			repairmanForms := protected.Group("/repairman-forms")
			{
				repairmanForms.GET("", repairmanFormController.ListForms)
				repairmanForms.POST("", repairmanFormController.Apply)
				repairmanForms.GET("/:id", repairmanFormController.GetForm)
				repairmanForms.PATCH("/:id/status", repairmanFormController.DecideForm)
			}

			protected.GET("/dashboard/statistics", dashboardController.GetStatistics)
		}
	}

	return router
}

// corsConfig allows every origin when origins is empty or contains "*"
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "RepairHub API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
