package facilities

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupFacilityRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes
	publicFacilities := router.Group("/facilities")
	{
		publicFacilities.GET("", controller.GetAllFacilities)
		publicFacilities.GET("/:id", controller.GetFacility)
	}

	router.GET("/flights/:id/facilities", controller.GetFlightFacilities)

	// Admin routes
	adminFacilities := router.Group("/admin/facilities")
	adminFacilities.Use(middleware.Identity(), middleware.RequireAdmin())
	{
		adminFacilities.POST("", controller.CreateFacility)
		adminFacilities.PUT("/:id", controller.UpdateFacility)
	}

	adminFlights := router.Group("/admin/flights")
	adminFlights.Use(middleware.Identity(), middleware.RequireAdmin())
	{
		adminFlights.PUT("/:id/facilities", controller.SetFlightFacilities)
	}
}
