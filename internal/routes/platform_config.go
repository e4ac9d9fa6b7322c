package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPlatformConfigRoutes sets up all routes related to the platform config
func SetupPlatformConfigRoutes(r *gin.Engine) {
	platform := r.Group("/platform")
	{
		platform.POST("/initialize", handlers.InitializePlatform)
		platform.GET("", handlers.GetPlatformConfig)
	}
}
