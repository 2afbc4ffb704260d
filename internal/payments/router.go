package payments

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupPaymentRoutes(router *gin.RouterGroup, controller Controller) {
	pay := router.Group("/orders")
	pay.Use(middleware.Identity())
	{
		pay.POST("/:id/pay", controller.PayOrder)
	}

	// The gateway authenticates with its signature, not a user header.
	router.POST("/payments/callback", controller.Callback)
}
