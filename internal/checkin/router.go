package checkin

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupCheckInRoutes(router *gin.RouterGroup, controller Controller) {
	desk := router.Group("/checkin")
	desk.Use(middleware.Identity(), middleware.RequireRoles(middleware.RoleCheckInManager))
	{
		desk.POST("/tickets/:id", controller.CheckInTicket)
	}

	gate := router.Group("/gate")
	gate.Use(middleware.Identity(), middleware.RequireRoles(middleware.RoleGateManager))
	{
		gate.POST("/tickets/:id", controller.GateTicket)
	}
}
