package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document exists for the order.
var ErrNotFound = errors.New("transaction not found")

// Document is a transaction record keyed by order ID. Values are plain
// JSON values: strings, json.Number, bools, nil, []interface{} and
// map[string]interface{}.
type Document map[string]interface{}

// Store persists the latest known state of each transaction.
//
// UpsertMerge creates the document if absent and otherwise replaces only
// the top-level keys present in fields. UpsertOverwrite replaces the whole
// document. Neither performs any ordering check: the last write wins.
type Store interface {
	UpsertMerge(ctx context.Context, orderID string, fields Document) error
	UpsertOverwrite(ctx context.Context, orderID string, fields Document) error
	Get(ctx context.Context, orderID string) (Document, error)
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DecodeDocument parses a JSON object, keeping numbers verbatim as json.Number.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return doc, nil
}

// decodeValue parses a single JSON value, keeping numbers as json.Number.
func decodeValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func validateKey(orderID string) error {
	if orderID == "" {
		return fmt.Errorf("order ID is required")
	}
	return nil
}
