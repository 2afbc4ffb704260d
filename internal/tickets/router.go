package tickets

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	seats := router.Group("/flights")
	seats.Use(middleware.Identity())
	{
		seats.POST("/:id/seats", controller.AcquireSeat)
	}

	tickets := router.Group("/tickets")
	tickets.Use(middleware.Identity())
	{
		tickets.GET("/:id", controller.GetTicket)
		tickets.DELETE("/:id", controller.ReleaseTicket)
	}
}
