package middleware

import (
	"github.com/gin-gonic/gin"

	"solace/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an id, reusing the client's if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}
