package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupUserPositionRoutes sets up all routes related to user positions
func SetupUserPositionRoutes(r *gin.Engine) {
	positions := r.Group("/positions")
	{
		positions.POST("/contribute", handlers.ContributePublic)
		positions.POST("/claim", handlers.ClaimTokens)
		positions.POST("/refund", handlers.ClaimRefund)
		positions.GET("/:mint", handlers.ListUserPositions)
		positions.GET("/:mint/:user", handlers.GetUserPosition)
	}
}
