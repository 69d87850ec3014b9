package routes

import (
	"github.com/address-validator/app/controllers"
	"github.com/address-validator/helpers/utils"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes registers all versioned API routes.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		// Address validation routes
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/validate", addressController.ValidateAddress)
			addresses.POST("/search", addressController.SearchAddress)
			addresses.POST("/jobs", addressController.BatchValidate)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/dataset/reload", adminController.ReloadDataset)
			admin.POST("/search/seed", adminController.SeedSearchIndex)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.GET("/stats", adminController.GetStats)
		}

		// Health check route
		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned health endpoints.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes wires middleware and all route groups.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware attaches the shared middleware stack.
func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(requestID())
}

// requestID tags every response so log lines and error reports can be
// correlated with a specific request.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateShortID()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
