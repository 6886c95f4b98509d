package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"payment-relay/internal/response"
	"payment-relay/pkg/logging"

	"github.com/gin-gonic/gin"
)

const genericMessage = "Something went wrong"

// Recovery turns a panic anywhere in the chain into a 500 envelope.
// The panic value is only exposed in development mode.
func Recovery(development bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.Errorf("Panic recovered - request_id: %s, path: %s, error: %v\n%s",
			GetRequestID(c), c.Request.URL.Path, recovered, debug.Stack())

		message := genericMessage
		if development {
			message = fmt.Sprint(recovered)
		}
		response.AbortWithError(c, http.StatusInternalServerError, response.CodeInternal, message)
	})
}

// ErrorHandler answers with a 500 envelope when a handler attached an
// error to the context without writing a response.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logging.Errorf("Unhandled error - request_id: %s, path: %s, error: %v",
			GetRequestID(c), c.Request.URL.Path, err.Err)

		if c.Writer.Written() {
			return
		}

		message := genericMessage
		if development {
			message = err.Error()
		}
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeInternal, message)
	}
}

// NoRoute answers unknown paths
func NoRoute(c *gin.Context) {
	response.ErrorJSON(c, http.StatusNotFound, response.CodeNotFound, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path))
}

// NoMethod answers known paths requested with the wrong method
func NoMethod(c *gin.Context) {
	response.ErrorJSON(c, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, fmt.Sprintf("%s is not allowed on %s", c.Request.Method, c.Request.URL.Path))
}
