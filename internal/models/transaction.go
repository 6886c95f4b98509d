package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transaction is the SQL row backing one transaction document.
// Document holds the full stored document; the scalar columns are
// materialised from it on every write so they can be queried.
type Transaction struct {
	OrderID           string         `json:"order_id" gorm:"primaryKey;size:100"`
	TransactionID     string         `json:"transaction_id" gorm:"size:100;index"`
	TransactionStatus string         `json:"transaction_status" gorm:"size:32;index"`
	PaymentType       string         `json:"payment_type" gorm:"size:50"`
	GrossAmount       string         `json:"gross_amount" gorm:"size:50"`
	FraudStatus       string         `json:"fraud_status" gorm:"size:20"`
	Currency          string         `json:"currency" gorm:"size:10"`
	TransactionTime   string         `json:"transaction_time" gorm:"size:40"`
	SettlementTime    string         `json:"settlement_time" gorm:"size:40"`
	ExpiryTime        string         `json:"expiry_time" gorm:"size:40"`
	Document          datatypes.JSON `json:"document"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
