package flights

import (
	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
)

func SetupFlightRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes
	publicFlights := router.Group("/flights")
	{
		publicFlights.GET("", controller.GetAllFlights)
		publicFlights.GET("/:id", controller.GetFlight)
		publicFlights.GET("/:id/seats", controller.GetFreeSeats)
	}

	// Admin routes
	adminFlights := router.Group("/admin/flights")
	adminFlights.Use(middleware.Identity(), middleware.RequireAdmin())
	{
		adminFlights.POST("", controller.CreateFlight)
		adminFlights.PUT("/:id/pricing", controller.UpdateFlightPricing)
		adminFlights.GET("/:id/stats", controller.GetFlightStats)
	}

	adminAirplanes := router.Group("/admin/airplanes")
	adminAirplanes.Use(middleware.Identity(), middleware.RequireAdmin())
	{
		adminAirplanes.POST("", controller.CreateAirplane)
		adminAirplanes.GET("", controller.GetAllAirplanes)
	}
}
