package orders

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupOrderRoutes(router *gin.RouterGroup, controller Controller) {
	orders := router.Group("/orders")
	orders.Use(middleware.Identity())
	{
		orders.POST("", controller.CreateOrder)
		orders.GET("", controller.ListOrders)
		orders.GET("/:id", controller.GetOrder)
		orders.POST("/:id/customize", controller.CustomizeOrder)
	}
}
