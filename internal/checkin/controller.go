package checkin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skyfare/internal/facilities"
	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
	"skyfare/internal/tickets"
)

type Controller interface {
	CheckInTicket(c *gin.Context)
	GateTicket(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CheckInTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket ID", nil, nil)
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	staffID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	result, err := ctrl.service.CheckIn(c.Request.Context(), staffID, ticketID, req)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrTicketNotPaid),
			errors.Is(err, tickets.ErrInvalidSeatNumber),
			errors.Is(err, facilities.ErrFacilityNotFound),
			errors.Is(err, facilities.ErrFacilityNotOffered):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, tickets.ErrSeatBusy):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to check in ticket", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket checked in successfully", result, nil)
}

func (ctrl *controller) GateTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket ID", nil, nil)
		return
	}

	staffID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	result, err := ctrl.service.Gate(c.Request.Context(), staffID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrTicketNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrTicketNotPaid), errors.Is(err, ErrNotCheckedIn):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, ErrAlreadyBoarded):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to register boarding", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Boarding registered successfully", result, nil)
}
