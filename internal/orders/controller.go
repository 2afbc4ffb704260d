package orders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skyfare/internal/facilities"
	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
	"skyfare/internal/tickets"
)

type Controller interface {
	CreateOrder(c *gin.Context)
	CustomizeOrder(c *gin.Context)
	GetOrder(c *gin.Context)
	ListOrders(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	order, err := ctrl.service.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptySelection):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, ErrTicketUnavailable):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to create order", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Order created successfully", order, nil)
}

func (ctrl *controller) CustomizeOrder(c *gin.Context) {
	orderID, err := parseOrderID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	var req CustomizeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	order, err := ctrl.service.Customize(c.Request.Context(), userID, orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotOrderOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		case errors.Is(err, ErrTicketNotInOrder),
			errors.Is(err, tickets.ErrInvalidSeatNumber),
			errors.Is(err, facilities.ErrFacilityNotFound),
			errors.Is(err, facilities.ErrFacilityNotOffered):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		case errors.Is(err, tickets.ErrSeatBusy):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to customize order", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Order customized successfully", order, nil)
}

func (ctrl *controller) GetOrder(c *gin.Context) {
	orderID, err := parseOrderID(c)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	order, err := ctrl.service.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, ErrNotOrderOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get order", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Order retrieved successfully", order, nil)
}

func (ctrl *controller) ListOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	orders, err := ctrl.service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list orders", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Orders retrieved successfully", orders, nil)
}

func parseOrderID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
