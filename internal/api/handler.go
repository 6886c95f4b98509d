package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"

	"payment-relay/internal/gateway"
	"payment-relay/internal/middleware"
	"payment-relay/internal/response"
	"payment-relay/internal/services"
	"payment-relay/internal/store"
	"payment-relay/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Handler serves the relay endpoints
type Handler struct {
	service *services.TransactionService
}

// NewHandler creates a handler on the transaction service
func NewHandler(service *services.TransactionService) *Handler {
	return &Handler{service: service}
}

// Health reports liveness
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SnapTokenRequest represents snap token request
type SnapTokenRequest struct {
	OrderID         string                 `json:"order_id"`
	Amount          interface{}            `json:"amount"` // json.Number or numeric string
	CustomerDetails map[string]interface{} `json:"customer_details"`
}

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// CreateSnapToken issues a Snap token for an order
// POST /snap-token
func (h *Handler) CreateSnapToken(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	var req SnapTokenRequest
	if err := decodeJSON(c, &req); err != nil && !errors.Is(err, io.EOF) {
		logging.Warnf("Snap token rejected - request_id: %s, invalid body: %v", requestID, err)
		response.ErrorJSON(c, http.StatusBadRequest, response.CodeInvalidBody, err.Error())
		return
	}

	amountText := strings.TrimSpace(cast.ToString(req.Amount))
	amount, amountErr := decimal.NewFromString(amountText)
	if req.OrderID == "" || amountText == "" || (amountErr == nil && amount.IsZero()) {
		logging.Warnf("Snap token rejected - request_id: %s, order_id: %q, amount: %q, missing fields",
			requestID, req.OrderID, amountText)
		response.ErrorJSON(c, http.StatusBadRequest, response.CodeMissingFields, "order_id and amount are required")
		return
	}
	if amountErr != nil || amount.IsNegative() || !amount.Equal(amount.Truncate(0)) || amount.GreaterThan(maxAmount) {
		logging.Warnf("Snap token rejected - request_id: %s, order_id: %s, invalid amount: %q",
			requestID, req.OrderID, amountText)
		response.ErrorJSON(c, http.StatusBadRequest, response.CodeInvalidAmount, "amount must be a positive whole number")
		return
	}

	token, err := h.service.CreateSnapToken(c.Request.Context(), req.OrderID, amount.IntPart(), req.CustomerDetails)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidRequest) {
			logging.Warnf("Snap token rejected - request_id: %s, order_id: %s, error: %v", requestID, req.OrderID, err)
			response.ErrorJSON(c, http.StatusBadRequest, response.CodeInvalidBody, err.Error())
			return
		}
		logging.Errorf("Error creating Snap token - request_id: %s, order_id: %s, error: %v",
			requestID, req.OrderID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeCreateTransaction, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// decodeJSON keeps numbers as json.Number so amounts are validated from their exact text
func decodeJSON(c *gin.Context, v interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

// CheckTransaction returns the gateway's status for an order
// GET /check/:orderId
func (h *Handler) CheckTransaction(c *gin.Context) {
	orderID := c.Param("orderId")

	record, err := h.service.CheckStatus(c.Request.Context(), orderID)
	if err != nil {
		logging.Errorf("Error checking transaction status - request_id: %s, order_id: %s, error: %v",
			middleware.GetRequestID(c), orderID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeCheckStatus, err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetTransaction returns the stored document for an order
// GET /transactions/:orderId
func (h *Handler) GetTransaction(c *gin.Context) {
	orderID := c.Param("orderId")

	doc, err := h.service.GetTransaction(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, response.CodeTransactionMissing, "no transaction stored for order "+orderID)
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// MidtransWebhook ingests a payment notification
// POST /midtrans-webhook
func (h *Handler) MidtransWebhook(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Webhook error - request_id: %s, failed to read body: %v", requestID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeProcessWebhook, err.Error())
		return
	}

	notification, err := store.DecodeDocument(body)
	if err != nil {
		logging.Errorf("Webhook error - request_id: %s, invalid payload: %v, body length: %d", requestID, err, len(body))
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeProcessWebhook, err.Error())
		return
	}

	logging.Infof("Webhook received - request_id: %s, order_id: %v, transaction_status: %v, payment_type: %v",
		requestID, notification["order_id"], notification["transaction_status"], notification["payment_type"])

	if _, err := h.service.IngestNotification(c.Request.Context(), notification); err != nil {
		if errors.Is(err, services.ErrMissingOrderID) {
			logging.Errorf("Webhook error - request_id: %s, order_id missing", requestID)
			response.ErrorJSON(c, http.StatusBadRequest, response.CodeMissingFields, err.Error())
			return
		}
		logging.Errorf("Webhook error - request_id: %s, error: %v", requestID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, response.CodeProcessWebhook, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
}
