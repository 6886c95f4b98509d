package models

// Document field names shared by the webhook and status-check paths.
const (
	FieldOrderID           = "order_id"
	FieldTransactionID     = "transaction_id"
	FieldTransactionStatus = "transaction_status"
	FieldPaymentType       = "payment_type"
	FieldGrossAmount       = "gross_amount"
	FieldTransactionTime   = "transaction_time"
	FieldSettlementTime    = "settlement_time"
	FieldExpiryTime        = "expiry_time"
	FieldVANumbers         = "va_numbers"
	FieldFraudStatus       = "fraud_status"
	FieldCurrency          = "currency"
	FieldNotificationData  = "notification_data"
	FieldUpdatedAt         = "updated_at"
)

// NotificationFields are the keys copied from a Midtrans payment
// notification into the stored transaction document.
var NotificationFields = []string{
	FieldTransactionStatus,
	FieldPaymentType,
	FieldGrossAmount,
	FieldTransactionTime,
	FieldTransactionID,
	FieldSettlementTime,
	FieldVANumbers,
	FieldFraudStatus,
	FieldCurrency,
	FieldExpiryTime,
}

// StatusSettlement is the only status that triggers persistence on a status check.
const StatusSettlement = "settlement"
