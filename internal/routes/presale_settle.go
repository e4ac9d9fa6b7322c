package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPresaleSettleRoutes sets up all routes related to presale settlement
func SetupPresaleSettleRoutes(r *gin.Engine) {
	settle := r.Group("/presale-settle")
	{
		settle.POST("/finalize", handlers.FinalizePresale)
		settle.POST("/migrate", handlers.MigrateAndCreateLp)
		settle.POST("/withdraw-for-launch", handlers.WithdrawForLaunch)
	}
}
