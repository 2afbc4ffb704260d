package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skyfare/internal/shared/utils/response"
	"skyfare/pkg/logger"
)

// Middleware enforces the sliding-window limit for every request.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limitType := getRateLimitType(c.Request.URL.Path, c.Request.Method)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Fail open when Redis is unreachable.
			logger.GetDefault().WithError(err).Error("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.Request.URL.Path)
			response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil, gin.H{
				"retry_after": result.ResetTime,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType classifies a path into a budget class.
func getRateLimitType(path, method string) RateLimitType {
	switch {
	case strings.Contains(path, "/health"):
		return RateLimitTypeHealth
	case strings.Contains(path, "/payments"):
		return RateLimitTypePayment
	case strings.Contains(path, "/checkin") || strings.Contains(path, "/gate"):
		return RateLimitTypeStaff
	case strings.Contains(path, "/tickets") || strings.Contains(path, "/orders") || strings.Contains(path, "/carts"):
		return RateLimitTypeBooking
	case method == http.MethodGet && (strings.Contains(path, "/flights") || strings.Contains(path, "/facilities")):
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}
