package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPresaleConfigRoutes sets up all routes related to presale management
func SetupPresaleConfigRoutes(r *gin.Engine) {
	presales := r.Group("/presales")
	{
		presales.POST("", handlers.CreatePresale)
		presales.GET("", handlers.ListPresales)
		presales.GET("/:mint", handlers.GetPresale)
		presales.POST("/fund", handlers.FundPresaleTokens)
	}
}
