package utils

import (
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/gin-gonic/gin"
)

// NewRateLimiter allows perSecond requests per client address. Buckets of
// idle clients expire after an hour. Forwarding headers are only consulted
// when behindProxy is set; otherwise the socket address is the client.
func NewRateLimiter(perSecond float64, behindProxy bool) *limiter.Limiter {
	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	if behindProxy {
		lmt.SetIPLookups([]string{"X-Real-IP", "X-Forwarded-For", "RemoteAddr"})
	} else {
		lmt.SetIPLookups([]string{"RemoteAddr"})
	}
	return lmt
}

// RateLimit rejects requests over the limiter budget with 429 in the usual
// response envelope.
func RateLimit(lmt *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			c.AbortWithStatusJSON(httpErr.StatusCode, APIResponse{
				StatusCode: httpErr.StatusCode,
				Message:    "too many requests",
				Success:    false,
			})
			return
		}
		c.Next()
	}
}
