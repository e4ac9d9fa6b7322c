package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupWhitelistRoutes sets up all routes related to whitelist management
func SetupWhitelistRoutes(r *gin.Engine) {
	whitelist := r.Group("/whitelist")
	{
		whitelist.POST("", handlers.WhitelistUser)
		whitelist.GET("/:mint", handlers.ListWhitelistEntries)
	}
}
