package carts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
)

type Controller interface {
	ViewCart(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// ViewCart lists the caller's held tickets. Buffered notices come
// along once and are cleared by the read.
func (ctrl *controller) ViewCart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	cart, err := ctrl.service.ViewCart(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to load cart", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart retrieved successfully", cart, nil)
}
