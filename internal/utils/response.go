package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func Respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// RespondError writes err as an enveloped failure and aborts the chain.
// Server-side failures are logged with their cause; the client only sees the
// message.
func RespondError(c *gin.Context, err error, logger *zap.Logger) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = &APIError{StatusCode: http.StatusServiceUnavailable, Message: "request timed out", Err: err}
	case errors.As(err, &tooLarge):
		err = &APIError{StatusCode: http.StatusRequestEntityTooLarge, Message: "request body too large", Err: err}
	}
	apiErr := AsAPIError(err)
	if apiErr.StatusCode >= 500 {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", apiErr.StatusCode),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, APIResponse{
		StatusCode: apiErr.StatusCode,
		Data:       nil,
		Message:    apiErr.Message,
		Success:    false,
	})
}

// Timeout bounds the request context so every store round trip inherits the
// same deadline.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BodyLimit caps request bodies at limit bytes. Declared oversize bodies are
// rejected up front; streamed ones fail on read.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, APIResponse{
				StatusCode: http.StatusRequestEntityTooLarge,
				Message:    "request body too large",
				Success:    false,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
