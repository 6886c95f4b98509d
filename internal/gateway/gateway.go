package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidRequest marks request data the gateway's schema cannot carry.
// Nothing is sent to the gateway when it is returned.
var ErrInvalidRequest = errors.New("invalid gateway request")

// TokenRequest is what the relay forwards to the gateway to open a Snap payment.
type TokenRequest struct {
	OrderID         string
	GrossAmount     int64
	SecureCard      bool
	CustomerDetails map[string]interface{}
}

// TokenResponse carries the opaque Snap token.
type TokenResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// StatusRecord is the raw transaction status object returned by the gateway.
type StatusRecord map[string]interface{}

// Client is the narrow view of the payment gateway the relay depends on.
// Calls are attempted once; there is no retry.
type Client interface {
	CreateTransaction(ctx context.Context, req *TokenRequest) (*TokenResponse, error)
	Status(ctx context.Context, orderID string) (StatusRecord, error)
}

// Error is a failure reported by the gateway itself rather than the transport.
type Error struct {
	StatusCode string
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == "" {
		return e.Message
	}
	return fmt.Sprintf("Midtrans API is returning API error. HTTP status code: %s. API response: %s", e.StatusCode, e.Message)
}
