package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a single payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CountsTowardBalance reports whether the payment reduces the invoice's
// balance due. Only completed payments do.
func (s PaymentStatus) CountsTowardBalance() bool {
	return s == PaymentStatusCompleted
}

// Payment records money applied against a single invoice. Once completed it is
// immutable except for the refund/void administrative transitions.
type Payment struct {
	PaymentID  string          `json:"paymentID"` // Primary Key (e.g., UUID)
	InvoiceID  string          `json:"invoiceID"` // FK -> Invoice.invoiceID (Not Null)
	Amount     decimal.Decimal `json:"amount"`    // Strictly positive, 2dp
	Method     string          `json:"method"`    // cash, cheque, transfer, card, ...
	Reference  string          `json:"reference"` // Unique per invoice; duplicate-submit guard
	Status     PaymentStatus   `json:"status"`
	RecordedAt time.Time       `json:"recordedAt"`
	AuditFields
}
