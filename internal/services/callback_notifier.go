package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payment-relay/internal/models"
	"payment-relay/internal/store"
	"payment-relay/pkg/logging"

	"github.com/spf13/cast"
)

// SignatureHeader carries the HMAC-SHA256 of the callback body
const SignatureHeader = "X-Relay-Signature"

// CallbackNotifier forwards transaction updates to a downstream backend
type CallbackNotifier struct {
	httpClient  *http.Client
	callbackURL string
	secret      string
}

// NewCallbackNotifier creates a new callback notifier
func NewCallbackNotifier(callbackURL, secret string) *CallbackNotifier {
	return &CallbackNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // 10 second timeout
		},
		callbackURL: callbackURL,
		secret:      secret,
	}
}

// CallbackPayload represents the payload sent to the downstream backend
type CallbackPayload struct {
	Event             string `json:"event"`  // always "transaction.updated"
	Source            string `json:"source"` // webhook or status_check
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type,omitempty"`
	GrossAmount       string `json:"gross_amount,omitempty"`
	Timestamp         string `json:"timestamp"` // ISO 8601 format
}

// NotifyTransactionUpdated sends one callback for a written document.
// It is called asynchronously; failures are logged and not retried.
func (n *CallbackNotifier) NotifyTransactionUpdated(source string, doc store.Document) {
	payload := CallbackPayload{
		Event:             "transaction.updated",
		Source:            source,
		OrderID:           cast.ToString(doc[models.FieldOrderID]),
		TransactionStatus: cast.ToString(doc[models.FieldTransactionStatus]),
		PaymentType:       cast.ToString(doc[models.FieldPaymentType]),
		GrossAmount:       cast.ToString(doc[models.FieldGrossAmount]),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}

	if err := n.Send(context.Background(), payload); err != nil {
		logging.Errorf("Transaction callback failed - url: %s, order_id: %s, error: %v",
			n.callbackURL, payload.OrderID, err)
		return
	}

	logging.Infof("Transaction callback sent - url: %s, order_id: %s, status: %s",
		n.callbackURL, payload.OrderID, payload.TransactionStatus)
}

// Send posts a single callback request
func (n *CallbackNotifier) Send(ctx context.Context, payload CallbackPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.callbackURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PaymentRelay-Callback/1.0")

	if n.secret != "" {
		req.Header.Set(SignatureHeader, Sign(jsonData, n.secret))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// Sign returns the hex HMAC-SHA256 of payload
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
