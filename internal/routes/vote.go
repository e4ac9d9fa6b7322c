package routes

import (
	"presalecontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupVoteRoutes sets up all routes related to launch votes
func SetupVoteRoutes(r *gin.Engine) {
	vote := r.Group("/vote")
	{
		vote.POST("/start", handlers.StartVote)
		vote.POST("/cast", handlers.CastVote)
		vote.POST("/resolve", handlers.ResolveVote)
		vote.POST("/enable-refunds", handlers.EnableRefunds)
	}
}
