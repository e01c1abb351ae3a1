package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt mirrors the receipts table. payment_id carries a unique constraint
// so issuance stays idempotent per payment.
type Receipt struct {
	ReceiptID         string          `json:"receiptID"` // Primary Key (e.g., UUID)
	PaymentID         string          `json:"paymentID"`
	AccountID         string          `json:"accountID"`
	ReceiptNumber     string          `json:"receiptNumber"` // Unique within account
	Amount            decimal.Decimal `json:"amount"`
	IssuedAt          time.Time       `json:"issuedAt"`
	CorrectsReceiptID *string         `json:"correctsReceiptID"`
}
