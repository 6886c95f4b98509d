package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-relay/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedCallback struct {
	signature string
	body      []byte
}

func newCallbackServer(t *testing.T, status int) (*httptest.Server, chan receivedCallback) {
	t.Helper()
	received := make(chan receivedCallback, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- receivedCallback{signature: r.Header.Get(SignatureHeader), body: body}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func TestCallbackNotifierSignsPayload(t *testing.T) {
	srv, received := newCallbackServer(t, http.StatusOK)
	notifier := NewCallbackNotifier(srv.URL, "s3cret")

	notifier.NotifyTransactionUpdated(SourceWebhook, store.Document{
		"order_id":           "ORDER-1",
		"transaction_status": "settlement",
		"payment_type":       "gopay",
		"gross_amount":       json.Number("10000.00"),
	})

	select {
	case got := <-received:
		assert.Equal(t, Sign(got.body, "s3cret"), got.signature)

		var payload CallbackPayload
		require.NoError(t, json.Unmarshal(got.body, &payload))
		assert.Equal(t, "transaction.updated", payload.Event)
		assert.Equal(t, SourceWebhook, payload.Source)
		assert.Equal(t, "ORDER-1", payload.OrderID)
		assert.Equal(t, "settlement", payload.TransactionStatus)
		assert.Equal(t, "gopay", payload.PaymentType)
		assert.Equal(t, "10000.00", payload.GrossAmount)
	case <-time.After(time.Second):
		t.Fatal("callback not received")
	}
}

func TestCallbackNotifierWithoutSecret(t *testing.T) {
	srv, received := newCallbackServer(t, http.StatusNoContent)
	notifier := NewCallbackNotifier(srv.URL, "")

	err := notifier.Send(context.Background(), CallbackPayload{Event: "transaction.updated", OrderID: "ORDER-1"})
	require.NoError(t, err)

	got := <-received
	assert.Empty(t, got.signature)
}

func TestCallbackNotifierRejectsNon2xx(t *testing.T) {
	srv, received := newCallbackServer(t, http.StatusInternalServerError)
	notifier := NewCallbackNotifier(srv.URL, "")

	err := notifier.Send(context.Background(), CallbackPayload{OrderID: "ORDER-1"})
	assert.Error(t, err)
	assert.Len(t, received, 1)
}

func TestSign(t *testing.T) {
	assert.Equal(t, Sign([]byte("{}"), "key"), Sign([]byte("{}"), "key"))
	assert.NotEqual(t, Sign([]byte("{}"), "key"), Sign([]byte("{}"), "other"))
	assert.Len(t, Sign([]byte("{}"), "key"), 64)
}
