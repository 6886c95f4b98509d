package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"payment-relay/internal/models"

	"github.com/spf13/cast"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps transaction documents in a SQL table through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on an open, migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// UpsertMerge merges fields into the stored document
func (s *GormStore) UpsertMerge(ctx context.Context, orderID string, fields Document) error {
	return s.write(ctx, orderID, fields, true)
}

// UpsertOverwrite replaces the stored document
func (s *GormStore) UpsertOverwrite(ctx context.Context, orderID string, fields Document) error {
	return s.write(ctx, orderID, fields, false)
}

// Get returns the stored document
func (s *GormStore) Get(ctx context.Context, orderID string) (Document, error) {
	var row models.Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", orderID, err)
	}

	doc, err := DecodeDocument(row.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", orderID, err)
	}
	return doc, nil
}

// write claims the row before reading it so concurrent writers for the same
// order queue on the row instead of racing to insert it.
func (s *GormStore) write(ctx context.Context, orderID string, fields Document, merge bool) error {
	if err := validateKey(orderID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := &models.Transaction{OrderID: orderID, Document: datatypes.JSON("{}")}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).Create(placeholder).Error; err != nil {
			return fmt.Errorf("failed to claim transaction %s: %w", orderID, err)
		}

		// SQLite ignores the row lock; its write lock is already held by the insert
		var existing models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).First(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to load transaction %s: %w", orderID, err)
		}

		doc := Document{}
		if merge {
			if doc, err = DecodeDocument(existing.Document); err != nil {
				return fmt.Errorf("failed to decode transaction %s: %w", orderID, err)
			}
		}
		for k, v := range fields {
			doc[k] = v
		}

		row, err := rowFromDocument(orderID, doc)
		if err != nil {
			return err
		}
		row.CreatedAt = existing.CreatedAt
		return tx.Save(row).Error
	})
}

// rowFromDocument materialises the queryable columns of a document
func rowFromDocument(orderID string, doc Document) (*models.Transaction, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction %s: %w", orderID, err)
	}

	return &models.Transaction{
		OrderID:           orderID,
		TransactionID:     cast.ToString(doc[models.FieldTransactionID]),
		TransactionStatus: cast.ToString(doc[models.FieldTransactionStatus]),
		PaymentType:       cast.ToString(doc[models.FieldPaymentType]),
		GrossAmount:       cast.ToString(doc[models.FieldGrossAmount]),
		FraudStatus:       cast.ToString(doc[models.FieldFraudStatus]),
		Currency:          cast.ToString(doc[models.FieldCurrency]),
		TransactionTime:   cast.ToString(doc[models.FieldTransactionTime]),
		SettlementTime:    cast.ToString(doc[models.FieldSettlementTime]),
		ExpiryTime:        cast.ToString(doc[models.FieldExpiryTime]),
		Document:          datatypes.JSON(raw),
	}, nil
}
