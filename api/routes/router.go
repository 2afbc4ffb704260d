// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"skyfare/internal/carts"
	"skyfare/internal/checkin"
	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/notifications"
	"skyfare/internal/orders"
	"skyfare/internal/payments"
	"skyfare/internal/shared/config"
	"skyfare/internal/shared/database"
	"skyfare/internal/shared/middleware"
	"skyfare/internal/tickets"
	"skyfare/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher

	cacheService    cache.Service
	flightService   flights.Service
	ticketService   tickets.Service
	cartService     carts.Service
	facilityService facilities.Service
	orderService    orders.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// TicketService exposes the ticket service so the server can wire the
// hold scheduler and background sweeper after routes are set up.
func (r *Router) TicketService() tickets.Service {
	return r.ticketService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	r.buildServices()

	api := engine.Group(r.config.GetAPIBasePath())
	api.Use(middleware.RequestID())
	{
		flights.SetupFlightRoutes(api, flights.NewController(r.flightService))
		facilities.SetupFacilityRoutes(api, facilities.NewController(r.facilityService))
		tickets.SetupTicketRoutes(api, tickets.NewController(r.ticketService))
		carts.SetupCartRoutes(api, carts.NewController(r.cartService))
		orders.SetupOrderRoutes(api, orders.NewController(r.orderService))

		paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
		gatewayClient := payments.NewGatewayClient(r.config.Gateway)
		paymentService := payments.NewService(
			paymentRepo,
			r.orderService,
			r.ticketService,
			r.facilityService,
			gatewayClient,
			r.publisher,
			r.config.Gateway.SecretKey,
		)
		payments.SetupPaymentRoutes(api, payments.NewController(paymentService))

		checkinRepo := checkin.NewRepository(r.db.GetPostgreSQL())
		checkinService := checkin.NewService(checkinRepo, r.ticketService, r.facilityService, r.publisher)
		checkin.SetupCheckInRoutes(api, checkin.NewController(checkinService))
	}
}

// buildServices constructs the service graph. Flights and tickets
// reference each other through narrow interfaces, so the cross links
// are injected after construction.
func (r *Router) buildServices() {
	pg := r.db.GetPostgreSQL()
	r.cacheService = cache.NewService(r.db.GetRedisClient())

	r.facilityService = facilities.NewService(facilities.NewRepository(pg))

	r.flightService = flights.NewService(flights.NewRepository(pg))
	r.flightService.SetCacheService(r.cacheService)

	r.cartService = carts.NewService(carts.NewRepository(pg))

	r.ticketService = tickets.NewService(tickets.NewRepository(pg), r.config.Hold.Window)
	r.ticketService.SetCartService(r.cartService)
	r.ticketService.SetCacheService(r.cacheService)

	r.flightService.SetSeatLedger(r.ticketService)
	r.cartService.SetTicketLister(r.ticketService)

	r.orderService = orders.NewService(
		orders.NewRepository(pg),
		r.ticketService,
		r.facilityService,
		r.cartService,
	)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "skyfare-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "skyfare-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
