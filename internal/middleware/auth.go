package middleware

import (
	"crypto/subtle"
	"net/http"

	"payment-relay/internal/response"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the relay API key
const APIKeyHeader = "X-API-Key"

// APIKeyAuth requires the configured key on the request. An empty key disables the check.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		// If not passed via header, try the query parameter
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			provided = c.Query("api_key")
		}

		if provided == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeUnauthorized, "Missing api_key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid api_key")
			return
		}

		c.Next()
	}
}
