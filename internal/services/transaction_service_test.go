package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"payment-relay/internal/gateway"
	"payment-relay/internal/store"
	"payment-relay/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 123000000, time.FixedZone("WIB", 7*3600))

func newTestService(gw gateway.Client, st store.Store, notifier UpdateNotifier) *TransactionService {
	return NewTransactionService(gw, st, notifier).WithClock(func() time.Time { return fixedNow })
}

func mustDocument(t *testing.T, raw string) store.Document {
	t.Helper()
	doc, err := store.DecodeDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

func docJSON(t *testing.T, doc store.Document) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(raw)
}

// chanNotifier hands every notification to a channel
type chanNotifier struct {
	ch chan string
}

func (n *chanNotifier) NotifyTransactionUpdated(source string, doc store.Document) {
	n.ch <- source + ":" + doc["order_id"].(string)
}

func TestCreateSnapToken(t *testing.T) {
	gw := &testutil.MockGateway{}
	svc := newTestService(gw, testutil.NewRecordingStore(), nil)

	token, err := svc.CreateSnapToken(context.Background(), "ORDER-1", 5000, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock-token", token)

	require.Equal(t, 1, gw.CreateCallCount())
	req := gw.CreateCalls[0]
	assert.Equal(t, "ORDER-1", req.OrderID)
	assert.Equal(t, int64(5000), req.GrossAmount)
	assert.True(t, req.SecureCard)
	assert.NotNil(t, req.CustomerDetails)
}

func TestCreateSnapTokenGatewayError(t *testing.T) {
	gw := &testutil.MockGateway{
		CreateTransactionFunc: func(ctx context.Context, req *gateway.TokenRequest) (*gateway.TokenResponse, error) {
			return nil, errors.New("Access denied due to unauthorized transaction")
		},
	}
	svc := newTestService(gw, testutil.NewRecordingStore(), nil)

	_, err := svc.CreateSnapToken(context.Background(), "ORDER-1", 5000, map[string]interface{}{"first_name": "Budi"})
	require.Error(t, err)
	assert.Equal(t, "Access denied due to unauthorized transaction", err.Error())
}

func TestIngestNotification(t *testing.T) {
	st := testutil.NewRecordingStore()
	svc := newTestService(&testutil.MockGateway{}, st, nil)
	payload := `{"order_id":"ORDER-1","transaction_status":"settlement","payment_type":"bank_transfer","gross_amount":"10000.00","status_code":"200"}`

	fields, err := svc.IngestNotification(context.Background(), mustDocument(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16T02:30:00.123Z", fields["updated_at"])

	require.Equal(t, 1, st.WriteCount())
	assert.Equal(t, "merge", st.Writes[0].Op)
	assert.Equal(t, "ORDER-1", st.Writes[0].OrderID)

	doc, err := st.Get(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order_id":"ORDER-1",
		"transaction_status":"settlement",
		"payment_type":"bank_transfer",
		"gross_amount":"10000.00",
		"notification_data":`+payload+`,
		"updated_at":"2026-10-16T02:30:00.123Z"
	}`, docJSON(t, doc))
}

func TestIngestNotificationLeavesAbsentFieldsUntouched(t *testing.T) {
	st := testutil.NewRecordingStore()
	svc := newTestService(&testutil.MockGateway{}, st, nil)
	ctx := context.Background()

	_, err := svc.IngestNotification(ctx, mustDocument(t,
		`{"order_id":"ORDER-1","transaction_status":"pending","payment_type":"bank_transfer","va_numbers":[{"bank":"bca","va_number":"123"}],"expiry_time":"2026-10-17 09:30:00"}`))
	require.NoError(t, err)
	_, err = svc.IngestNotification(ctx, mustDocument(t,
		`{"order_id":"ORDER-1","transaction_status":"settlement","settlement_time":"2026-10-16 10:00:00"}`))
	require.NoError(t, err)

	doc, err := st.Get(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "settlement", doc["transaction_status"])
	assert.Equal(t, "bank_transfer", doc["payment_type"])
	assert.Equal(t, "2026-10-17 09:30:00", doc["expiry_time"])
	assert.Equal(t, "2026-10-16 10:00:00", doc["settlement_time"])
	assert.NotNil(t, doc["va_numbers"])
	assert.NotContains(t, doc, "fraud_status")
}

func TestIngestNotificationIdempotent(t *testing.T) {
	st := testutil.NewRecordingStore()
	svc := newTestService(&testutil.MockGateway{}, st, nil)
	ctx := context.Background()
	payload := `{"order_id":"ORDER-1","transaction_status":"settlement","transaction_id":"abc","fraud_status":"accept","currency":"IDR"}`

	_, err := svc.IngestNotification(ctx, mustDocument(t, payload))
	require.NoError(t, err)
	once, err := st.Get(ctx, "ORDER-1")
	require.NoError(t, err)

	_, err = svc.IngestNotification(ctx, mustDocument(t, payload))
	require.NoError(t, err)
	twice, err := st.Get(ctx, "ORDER-1")
	require.NoError(t, err)

	assert.Equal(t, docJSON(t, once), docJSON(t, twice))
}

func TestIngestNotificationMissingOrderID(t *testing.T) {
	st := testutil.NewRecordingStore()
	svc := newTestService(&testutil.MockGateway{}, st, nil)

	for _, payload := range []string{
		`{"transaction_status":"settlement"}`,
		`{"order_id":"","transaction_status":"settlement"}`,
		`{"order_id":null}`,
	} {
		_, err := svc.IngestNotification(context.Background(), mustDocument(t, payload))
		assert.ErrorIs(t, err, ErrMissingOrderID, payload)
	}
	assert.Zero(t, st.WriteCount())
}

func TestIngestNotificationStoreError(t *testing.T) {
	st := testutil.NewRecordingStore()
	st.Err = errors.New("database is locked")
	svc := newTestService(&testutil.MockGateway{}, st, nil)

	_, err := svc.IngestNotification(context.Background(), mustDocument(t, `{"order_id":"ORDER-1"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestIngestNotificationNotifies(t *testing.T) {
	notifier := &chanNotifier{ch: make(chan string, 1)}
	svc := newTestService(&testutil.MockGateway{}, testutil.NewRecordingStore(), notifier)

	_, err := svc.IngestNotification(context.Background(), mustDocument(t, `{"order_id":"ORDER-1","transaction_status":"pending"}`))
	require.NoError(t, err)

	select {
	case got := <-notifier.ch:
		assert.Equal(t, "webhook:ORDER-1", got)
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestCheckStatusSettlementOverwrites(t *testing.T) {
	record := gateway.StatusRecord{
		"status_code":        "200",
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
		"gross_amount":       "10000.00",
	}
	gw := &testutil.MockGateway{
		StatusFunc: func(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
			return record, nil
		},
	}
	st := testutil.NewRecordingStore()
	svc := newTestService(gw, st, nil)
	ctx := context.Background()

	require.NoError(t, st.UpsertMerge(ctx, "ORDER-1", store.Document{"order_id": "ORDER-1", "notification_data": map[string]interface{}{"a": "b"}}))

	got, err := svc.CheckStatus(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)
	assert.NotContains(t, got, "updated_at")

	require.Equal(t, 2, st.WriteCount())
	assert.Equal(t, "overwrite", st.Writes[1].Op)

	doc, err := st.Get(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status_code":"200",
		"order_id":"ORDER-1",
		"transaction_status":"settlement",
		"gross_amount":"10000.00",
		"updated_at":"2026-10-16T02:30:00.123Z"
	}`, docJSON(t, doc))
}

func TestCheckStatusNonSettlementDoesNotWrite(t *testing.T) {
	for _, status := range []string{"pending", "capture", "deny", "cancel", "expire", "refund", "Settlement", ""} {
		status := status
		gw := &testutil.MockGateway{
			StatusFunc: func(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
				return gateway.StatusRecord{"order_id": orderID, "transaction_status": status}, nil
			},
		}
		st := testutil.NewRecordingStore()
		svc := newTestService(gw, st, nil)

		got, err := svc.CheckStatus(context.Background(), "ORDER-2")
		require.NoError(t, err)
		assert.Equal(t, status, got["transaction_status"])
		assert.Zero(t, st.WriteCount(), status)
	}
}

func TestCheckStatusGatewayError(t *testing.T) {
	gw := &testutil.MockGateway{
		StatusFunc: func(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
			return nil, &gateway.Error{StatusCode: "404", Message: "Transaction doesn't exist."}
		},
	}
	st := testutil.NewRecordingStore()
	svc := newTestService(gw, st, nil)

	_, err := svc.CheckStatus(context.Background(), "ORDER-404")
	require.Error(t, err)
	assert.Zero(t, st.WriteCount())
}

func TestCheckStatusStoreError(t *testing.T) {
	gw := &testutil.MockGateway{
		StatusFunc: func(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
			return gateway.StatusRecord{"order_id": orderID, "transaction_status": "settlement"}, nil
		},
	}
	st := testutil.NewRecordingStore()
	st.Err = errors.New("connection reset")
	svc := newTestService(gw, st, nil)

	_, err := svc.CheckStatus(context.Background(), "ORDER-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetTransaction(t *testing.T) {
	st := testutil.NewRecordingStore()
	svc := newTestService(&testutil.MockGateway{}, st, nil)

	_, err := svc.GetTransaction(context.Background(), "ORDER-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.IngestNotification(context.Background(), mustDocument(t, `{"order_id":"ORDER-1","transaction_status":"pending"}`))
	require.NoError(t, err)

	doc, err := svc.GetTransaction(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", doc["transaction_status"])
}
