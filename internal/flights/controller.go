package flights

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
)

type Controller interface {
	CreateAirplane(c *gin.Context)
	GetAllAirplanes(c *gin.Context)

	CreateFlight(c *gin.Context)
	GetFlight(c *gin.Context)
	GetAllFlights(c *gin.Context)
	UpdateFlightPricing(c *gin.Context)
	GetFreeSeats(c *gin.Context)
	GetFlightStats(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateAirplane(c *gin.Context) {
	var req CreateAirplaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	airplane, err := ctrl.service.CreateAirplane(req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create airplane", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Airplane created successfully", airplane, nil)
}

func (ctrl *controller) GetAllAirplanes(c *gin.Context) {
	list, err := ctrl.service.GetAllAirplanes()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list airplanes", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Airplanes retrieved successfully", list, nil)
}

func (ctrl *controller) CreateFlight(c *gin.Context) {
	var req CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	flight, err := ctrl.service.CreateFlight(adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSchedule):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, ErrAirplaneNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create flight", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Flight created successfully", flight, nil)
}

func (ctrl *controller) GetFlight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	flight, err := ctrl.service.GetFlight(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get flight", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight retrieved successfully", flight, nil)
}

func (ctrl *controller) GetAllFlights(c *gin.Context) {
	var query FlightListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, response.ValidationMessages(err))
		return
	}

	flights, err := ctrl.service.GetAllFlights(query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list flights", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flights retrieved successfully", flights, nil)
}

func (ctrl *controller) UpdateFlightPricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	var req UpdateFlightPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	flight, err := ctrl.service.UpdateFlightPricing(id, req)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update flight", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight updated successfully", flight, nil)
}

func (ctrl *controller) GetFreeSeats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	cabinClass := c.DefaultQuery("cabin_class", CabinEconomy)

	seats, err := ctrl.service.GetFreeSeats(c.Request.Context(), id, cabinClass)
	if err != nil {
		switch {
		case errors.Is(err, ErrFlightNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrInvalidCabin):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list free seats", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Free seats retrieved successfully", seats, nil)
}

func (ctrl *controller) GetFlightStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	stats, err := ctrl.service.GetFlightStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get flight stats", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight stats retrieved successfully", stats, nil)
}
