package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the persisted lifecycle state of an invoice. The column is
// a cache of the derivation over ledger truth, refreshed on every mutation.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusViewed        InvoiceStatus = "VIEWED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// Invoice mirrors the invoices table.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`     // Primary Key (e.g., UUID)
	AccountID     string          `json:"accountID"`     // Owning account (Not Null)
	InvoiceNumber string          `json:"invoiceNumber"` // Unique within account
	CustomerID    string          `json:"customerID"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	CurrencyCode  string          `json:"currencyCode"`
	Discount      decimal.Decimal `json:"discount"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	ChargesTotal  decimal.Decimal `json:"chargesTotal"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
	SentAt        *time.Time      `json:"sentAt"`
	ViewedAt      *time.Time      `json:"viewedAt"`
	VoidedAt      *time.Time      `json:"voidedAt"`
	Notes         string          `json:"notes"`
	AuditFields
}

// LineItem mirrors the invoice_line_items table.
type LineItem struct {
	LineItemID  string           `json:"lineItemID"`
	InvoiceID   string           `json:"invoiceID"` // FK -> Invoice.invoiceID (Not Null)
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitRate    decimal.Decimal  `json:"unitRate"`
	Unit        string           `json:"unit"`
	PerItemTax  *decimal.Decimal `json:"perItemTax"`
	Total       decimal.Decimal  `json:"total"`
	Position    int              `json:"position"`
}

// AdditionalCharge mirrors the invoice_charges table.
type AdditionalCharge struct {
	ChargeID  string          `json:"chargeID"`
	InvoiceID string          `json:"invoiceID"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Position  int             `json:"position"`
}
