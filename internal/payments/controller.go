package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skyfare/internal/orders"
	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
)

type Controller interface {
	PayOrder(c *gin.Context)
	Callback(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) PayOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	invoice, err := ctrl.service.CreateInvoice(c.Request.Context(), userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
		case errors.Is(err, orders.ErrNotOrderOwner):
			response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
		case errors.Is(err, orders.ErrEmptySelection):
			response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusBadGateway, "Failed to create invoice", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Invoice created successfully", invoice, nil)
}

// Callback speaks the gateway's wire format directly, not the API
// envelope. The gateway retries anything that is not a signed ack.
func (ctrl *controller) Callback(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	ack, err := ctrl.service.HandleCallback(c.Request.Context(), rawBody)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedCallback), errors.Is(err, ErrBadSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUnknownOrder):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "callback processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, ack)
}
