package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is an immutable record emitted exactly once when a payment reaches
// COMPLETED. Corrections never edit a receipt; they create a new record linked
// through CorrectsReceiptID.
type Receipt struct {
	ReceiptID         string          `json:"receiptID"` // Primary Key (e.g., UUID)
	PaymentID         string          `json:"paymentID"` // FK -> Payment.paymentID, unique
	AccountID         string          `json:"accountID"`
	ReceiptNumber     string          `json:"receiptNumber"` // Sequential, unique per account
	Amount            decimal.Decimal `json:"amount"`
	IssuedAt          time.Time       `json:"issuedAt"`
	CorrectsReceiptID *string         `json:"correctsReceiptID,omitempty"`
}
