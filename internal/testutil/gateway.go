package testutil

import (
	"context"
	"sync"

	"payment-relay/internal/gateway"
)

// MockGateway implements gateway.Client for testing
type MockGateway struct {
	mu sync.Mutex

	CreateTransactionFunc func(ctx context.Context, req *gateway.TokenRequest) (*gateway.TokenResponse, error)
	StatusFunc            func(ctx context.Context, orderID string) (gateway.StatusRecord, error)

	CreateCalls []*gateway.TokenRequest
	StatusCalls []string
}

func (m *MockGateway) CreateTransaction(ctx context.Context, req *gateway.TokenRequest) (*gateway.TokenResponse, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, req)
	m.mu.Unlock()

	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, req)
	}
	return &gateway.TokenResponse{Token: "mock-token"}, nil
}

func (m *MockGateway) Status(ctx context.Context, orderID string) (gateway.StatusRecord, error) {
	m.mu.Lock()
	m.StatusCalls = append(m.StatusCalls, orderID)
	m.mu.Unlock()

	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, orderID)
	}
	return gateway.StatusRecord{"status_code": "200", "order_id": orderID, "transaction_status": "pending"}, nil
}

// CreateCallCount returns how many token requests reached the gateway
func (m *MockGateway) CreateCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateCalls)
}

// StatusCallCount returns how many status requests reached the gateway
func (m *MockGateway) StatusCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.StatusCalls)
}
