package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the persisted state of a payment row.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment mirrors the payments table. (invoice_id, reference) is unique so a
// duplicate submission can never double-count.
type Payment struct {
	PaymentID  string          `json:"paymentID"` // Primary Key (e.g., UUID)
	InvoiceID  string          `json:"invoiceID"` // FK -> Invoice.invoiceID (Not Null)
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Status     PaymentStatus   `json:"status"`
	RecordedAt time.Time       `json:"recordedAt"`
	AuditFields
}
