package testutil

import (
	"context"
	"sync"

	"payment-relay/internal/store"
)

// Write records one call made against a RecordingStore
type Write struct {
	Op      string // "merge" or "overwrite"
	OrderID string
	Fields  store.Document
}

// RecordingStore wraps a store, recording writes and optionally failing them
type RecordingStore struct {
	store.Store

	mu     sync.Mutex
	Writes []Write
	Err    error
}

// NewRecordingStore wraps an in-memory store
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{Store: store.NewMemoryStore()}
}

func (s *RecordingStore) UpsertMerge(ctx context.Context, orderID string, fields store.Document) error {
	if err := s.record("merge", orderID, fields); err != nil {
		return err
	}
	return s.Store.UpsertMerge(ctx, orderID, fields)
}

func (s *RecordingStore) UpsertOverwrite(ctx context.Context, orderID string, fields store.Document) error {
	if err := s.record("overwrite", orderID, fields); err != nil {
		return err
	}
	return s.Store.UpsertOverwrite(ctx, orderID, fields)
}

// WriteCount returns the number of attempted writes
func (s *RecordingStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Writes)
}

func (s *RecordingStore) record(op, orderID string, fields store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes = append(s.Writes, Write{Op: op, OrderID: orderID, Fields: fields})
	return s.Err
}
