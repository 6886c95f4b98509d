package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field
const (
	CodeMissingFields      = "Missing required fields"
	CodeInvalidBody        = "Invalid request body"
	CodeInvalidAmount      = "Invalid amount"
	CodeCreateTransaction  = "Failed to create transaction"
	CodeCheckStatus        = "Failed to check transaction status"
	CodeProcessWebhook     = "Failed to process webhook"
	CodeNotFound           = "Not Found"
	CodeTransactionMissing = "Transaction not found"
	CodeMethodNotAllowed   = "Method Not Allowed"
	CodeUnauthorized       = "Unauthorized"
	CodeInternal           = "Internal Server Error"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// AbortWithError sends an error JSON response and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
