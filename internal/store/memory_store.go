package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process memory. It is meant for local
// development and tests; nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// UpsertMerge merges fields into the stored document
func (s *MemoryStore) UpsertMerge(ctx context.Context, orderID string, fields Document) error {
	return s.write(orderID, fields, true)
}

// UpsertOverwrite replaces the stored document
func (s *MemoryStore) UpsertOverwrite(ctx context.Context, orderID string, fields Document) error {
	return s.write(orderID, fields, false)
}

// Get returns a decoded copy of the stored document
func (s *MemoryStore) Get(ctx context.Context, orderID string) (Document, error) {
	s.mu.RLock()
	raw, ok := s.docs[orderID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return DecodeDocument(raw)
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Documents are kept encoded so callers never share maps with the store.
func (s *MemoryStore) write(orderID string, fields Document, merge bool) error {
	if err := validateKey(orderID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{}
	if raw, ok := s.docs[orderID]; ok && merge {
		existing, err := DecodeDocument(raw)
		if err != nil {
			return fmt.Errorf("failed to decode transaction %s: %w", orderID, err)
		}
		doc = existing
	}
	for k, v := range fields {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", orderID, err)
	}
	s.docs[orderID] = raw
	return nil
}
