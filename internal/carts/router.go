package carts

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupCartRoutes(router *gin.RouterGroup, controller Controller) {
	cart := router.Group("/cart")
	cart.Use(middleware.Identity())
	{
		cart.GET("", controller.ViewCart)
	}
}
