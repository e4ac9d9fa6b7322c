package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupVaultAccountRoutes sets up all routes related to the custody book
func SetupVaultAccountRoutes(r *gin.Engine) {
	vaults := r.Group("/vaults")
	{
		vaults.POST("/deposit", handlers.DepositToAccount)
		vaults.GET("/account/:address", handlers.GetVaultAccount)
		vaults.GET("/presale/:mint", handlers.ListPresaleVaults)
		vaults.GET("/records/:mint", handlers.ListTransferRecords)
	}
}
