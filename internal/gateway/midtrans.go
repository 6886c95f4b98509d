package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"payment-relay/internal/config"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/spf13/cast"
)

// Midtrans talks to the Midtrans Snap and Core APIs.
type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

// NewMidtrans builds a client for the sandbox or production environment.
func NewMidtrans(cfg *config.Config) *Midtrans {
	env := midtrans.Sandbox
	if cfg.MidtransIsProduction {
		env = midtrans.Production
	}

	m := &Midtrans{}
	m.snap.New(cfg.MidtransServerKey, env)
	m.core.New(cfg.MidtransServerKey, env)
	m.core.ClientKey = cfg.MidtransClientKey
	return m
}

// WithHTTPClient replaces the transport used for both APIs.
func (m *Midtrans) WithHTTPClient(client midtrans.HttpClient) *Midtrans {
	m.snap.HttpClient = client
	m.core.HttpClient = client
	return m
}

// CreateTransaction requests a Snap token
func (m *Midtrans) CreateTransaction(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: req.SecureCard,
		},
	}

	customer, err := customerDetails(req.CustomerDetails)
	if err != nil {
		return nil, err
	}
	snapReq.CustomerDetail = customer

	resp, merr := m.snap.CreateTransaction(snapReq)
	if merr != nil {
		return nil, merr
	}
	if resp.Token == "" {
		return nil, &Error{Message: "snap token missing from gateway response"}
	}

	return &TokenResponse{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// Status fetches the raw transaction status object
// GET {base}/v2/{order_id}/status
func (m *Midtrans) Status(ctx context.Context, orderID string) (StatusRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v2/%s/status", m.core.Env.BaseUrl(), url.PathEscape(orderID))

	var record StatusRecord
	if merr := m.core.HttpClient.Call(http.MethodGet, endpoint, &m.core.ServerKey, m.core.Options, nil, &record); merr != nil {
		return nil, merr
	}
	if record == nil {
		return nil, &Error{Message: "empty status response"}
	}

	// The status API answers HTTP 200 with the real outcome in status_code.
	// 407 is an expired transaction, which is still a valid status.
	code := cast.ToInt(record["status_code"])
	if code >= 400 && code != 407 {
		return nil, &Error{
			StatusCode: cast.ToString(record["status_code"]),
			Message:    cast.ToString(record["status_message"]),
		}
	}

	return record, nil
}

// customerDetails maps the client's object onto the SDK's customer schema.
// Keys the schema does not know are dropped.
func customerDetails(details map[string]interface{}) (*midtrans.CustomerDetails, error) {
	customer := &midtrans.CustomerDetails{}
	if len(details) == 0 {
		return customer, nil
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("%w: customer_details: %v", ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(raw, customer); err != nil {
		return nil, fmt.Errorf("%w: customer_details: %v", ErrInvalidRequest, err)
	}
	return customer, nil
}
