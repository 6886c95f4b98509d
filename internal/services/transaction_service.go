package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-relay/internal/gateway"
	"payment-relay/internal/models"
	"payment-relay/internal/store"
	"payment-relay/pkg/logging"

	"github.com/spf13/cast"
)

// ErrMissingOrderID is returned when a notification carries no order_id.
var ErrMissingOrderID = errors.New("order_id is required")

// Write sources reported to the update notifier
const (
	SourceWebhook     = "webhook"
	SourceStatusCheck = "status_check"
)

// timestampLayout matches JavaScript's Date.toISOString
const timestampLayout = "2006-01-02T15:04:05.000Z"

// UpdateNotifier is told about every document the service has written.
type UpdateNotifier interface {
	NotifyTransactionUpdated(source string, doc store.Document)
}

// TransactionService relays token and status calls to the gateway and
// persists transaction state reported by it.
type TransactionService struct {
	gateway  gateway.Client
	store    store.Store
	notifier UpdateNotifier
	now      func() time.Time
}

// NewTransactionService creates a new transaction service. notifier may be nil.
func NewTransactionService(gw gateway.Client, st store.Store, notifier UpdateNotifier) *TransactionService {
	return &TransactionService{
		gateway:  gw,
		store:    st,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for updated_at.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// CreateSnapToken asks the gateway for a Snap token with secure card payments enabled
func (s *TransactionService) CreateSnapToken(ctx context.Context, orderID string, amount int64, customer map[string]interface{}) (string, error) {
	if customer == nil {
		customer = map[string]interface{}{}
	}

	resp, err := s.gateway.CreateTransaction(ctx, &gateway.TokenRequest{
		OrderID:         orderID,
		GrossAmount:     amount,
		SecureCard:      true,
		CustomerDetails: customer,
	})
	if err != nil {
		return "", err
	}

	logging.Infof("Snap token created - order_id: %s, amount: %d", orderID, amount)
	return resp.Token, nil
}

// IngestNotification merge-upserts a payment notification keyed by its
// order_id. Only the fields present in the notification are written,
// alongside the full payload and a fresh updated_at. The written fields
// are returned.
func (s *TransactionService) IngestNotification(ctx context.Context, notification store.Document) (store.Document, error) {
	orderID := cast.ToString(notification[models.FieldOrderID])
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	fields := store.Document{
		models.FieldOrderID:          orderID,
		models.FieldNotificationData: notification,
		models.FieldUpdatedAt:        s.timestamp(),
	}
	for _, key := range models.NotificationFields {
		if v, ok := notification[key]; ok {
			fields[key] = v
		}
	}

	if err := s.store.UpsertMerge(ctx, orderID, fields); err != nil {
		return nil, fmt.Errorf("failed to store notification for %s: %w", orderID, err)
	}

	logging.Infof("Transaction %s status updated - status: %v", orderID, fields[models.FieldTransactionStatus])
	s.notify(SourceWebhook, fields)
	return fields, nil
}

// CheckStatus returns the gateway's status record for the order. A settled
// transaction is written to the store as-is, replacing any earlier document.
func (s *TransactionService) CheckStatus(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
	record, err := s.gateway.Status(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if cast.ToString(record[models.FieldTransactionStatus]) != models.StatusSettlement {
		return record, nil
	}

	doc := store.Document(record).Clone()
	doc[models.FieldUpdatedAt] = s.timestamp()
	if err := s.store.UpsertOverwrite(ctx, orderID, doc); err != nil {
		return nil, fmt.Errorf("failed to store settlement for %s: %w", orderID, err)
	}

	logging.Infof("Transaction %s settled, record replaced", orderID)
	s.notify(SourceStatusCheck, doc)
	return record, nil
}

// GetTransaction returns the stored document for the order
func (s *TransactionService) GetTransaction(ctx context.Context, orderID string) (store.Document, error) {
	return s.store.Get(ctx, orderID)
}

func (s *TransactionService) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *TransactionService) notify(source string, doc store.Document) {
	if s.notifier == nil {
		return
	}
	go s.notifier.NotifyTransactionUpdated(source, doc)
}
