package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes registers the plain informational routes.
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		// Home page
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Address Validator Service",
				"version": "1.0.0",
				"docs":    "/docs",
			})
		})

		// API documentation
		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Address Validator API v1",
				"endpoints": map[string]string{
					"validate":    "POST /v1/addresses/validate",
					"search":      "POST /v1/addresses/search",
					"batch":       "POST /v1/addresses/jobs",
					"job_status":  "GET /v1/addresses/jobs/:jobID/status",
					"job_results": "GET /v1/addresses/jobs/:jobID/results",
					"health":      "GET /v1/health",
				},
			})
		})

		// Status page
		web.GET("/status", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "running",
				"service": "Address Validator",
			})
		})
	}
}
