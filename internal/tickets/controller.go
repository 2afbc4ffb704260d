package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skyfare/internal/flights"
	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
)

type Controller interface {
	AcquireSeat(c *gin.Context)
	ReleaseTicket(c *gin.Context)
	GetTicket(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) AcquireSeat(c *gin.Context) {
	flightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	var req AcquireSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	ticket, err := ctrl.service.Acquire(c.Request.Context(), userID, flightID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSeatFull), errors.Is(err, ErrSeatBusy):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		case errors.Is(err, ErrInvalidSeatNumber):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, flights.ErrFlightNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to acquire seat", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Seat held successfully", ticket, nil)
}

func (ctrl *controller) ReleaseTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket ID", nil, nil)
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	if err := ctrl.service.Release(c.Request.Context(), userID, ticketID); err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotTicketOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to release ticket", nil, nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *controller) GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket ID", nil, nil)
		return
	}

	ticket, err := ctrl.service.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get ticket", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ticket, nil)
}
