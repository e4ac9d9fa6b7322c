package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupOperatorKeyRoutes sets up all routes related to custodial signing keys
func SetupOperatorKeyRoutes(r *gin.Engine) {
	keys := r.Group("/operator-keys")
	{
		keys.POST("/generate", handlers.GenerateOperatorKeys)
		keys.GET("", handlers.ListOperatorKeys)
	}
}
