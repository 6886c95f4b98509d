package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each transaction document in a Redis hash: one hash
// field per top-level key, each value JSON-encoded.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on a connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func transactionKey(orderID string) string {
	return fmt.Sprintf("transaction:%s", orderID)
}

// UpsertMerge sets only the given hash fields
func (s *RedisStore) UpsertMerge(ctx context.Context, orderID string, fields Document) error {
	if err := validateKey(orderID); err != nil {
		return err
	}

	values, err := encodeHash(fields)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", orderID, err)
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, transactionKey(orderID), values).Err(); err != nil {
		return fmt.Errorf("failed to merge transaction %s: %w", orderID, err)
	}
	return nil
}

// UpsertOverwrite replaces the hash atomically
func (s *RedisStore) UpsertOverwrite(ctx context.Context, orderID string, fields Document) error {
	if err := validateKey(orderID); err != nil {
		return err
	}

	values, err := encodeHash(fields)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", orderID, err)
	}

	key := transactionKey(orderID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite transaction %s: %w", orderID, err)
	}
	return nil
}

// Get returns the stored document
func (s *RedisStore) Get(ctx context.Context, orderID string) (Document, error) {
	values, err := s.client.HGetAll(ctx, transactionKey(orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", orderID, err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	doc := make(Document, len(values))
	for field, raw := range values {
		v, err := decodeValue([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode field %s of transaction %s: %w", field, orderID, err)
		}
		doc[field] = v
	}
	return doc, nil
}

func encodeHash(fields Document) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		values[k] = string(raw)
	}
	return values, nil
}
