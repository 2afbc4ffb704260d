package middleware

import (
	"net/http"

	"skyfare/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authentication is handled by an upstream gateway; it forwards the caller's
// identity in trusted headers. These middlewares only read those headers.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Roles forwarded by the gateway.
const (
	RoleShopper        = "shopper"
	RoleCheckInManager = "check_in_manager"
	RoleGateManager    = "gate_manager"
	RoleAdmin          = "admin"
)

// Identity extracts the caller's identity from the gateway headers and
// aborts when it is missing or malformed.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader(HeaderUserID)
		if rawID == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, "X-User-ID header is required")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid user identity", nil, err.Error())
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_role", c.GetHeader(HeaderUserRole))
		c.Next()
	}
}

// RequireRoles checks that the caller carries one of the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "User role not found in context", nil, nil)
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		for _, allowed := range roles {
			if role == allowed || role == RoleAdmin {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireAdmin restricts a route to admin callers.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(RoleAdmin)
}

// RequestID attaches a request id to the context and response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id from the context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
