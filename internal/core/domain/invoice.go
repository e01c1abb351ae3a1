package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one billable row on an invoice. Its Total is always the
// calculator's output for (Quantity, UnitRate); it is never edited directly.
type LineItem struct {
	LineItemID  string           `json:"lineItemID"` // Primary Key (e.g., UUID)
	InvoiceID   string           `json:"invoiceID"`  // FK -> Invoice.invoiceID (Not Null)
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"` // Non-negative
	UnitRate    decimal.Decimal  `json:"unitRate"` // Non-negative, 2dp
	Unit        string           `json:"unit"`     // Free-form label (hours, pcs, ...)
	PerItemTax  *decimal.Decimal `json:"perItemTax,omitempty"`
	Total       decimal.Decimal  `json:"total"` // round(Quantity × UnitRate, 2)
	Position    int              `json:"position"`
}

// AdditionalCharge is a named flat amount added on top of the taxed base
// (shipping, handling, late fee).
type AdditionalCharge struct {
	ChargeID  string          `json:"chargeID"`
	InvoiceID string          `json:"invoiceID"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"` // Non-negative, 2dp
	Position  int             `json:"position"`
}

// Invoice is the aggregate root of the billing engine. Subtotal, TaxAmount and
// Total are denormalized caches of the aggregator output; the line items,
// discount, charges and tax rate remain the source of truth.
type Invoice struct {
	InvoiceID         string             `json:"invoiceID"`     // Primary Key (e.g., UUID)
	AccountID         string             `json:"accountID"`     // Owning account (Not Null)
	InvoiceNumber     string             `json:"invoiceNumber"` // Unique per account
	CustomerID        string             `json:"customerID"`
	IssueDate         time.Time          `json:"issueDate"`
	DueDate           time.Time          `json:"dueDate"`
	CurrencyCode      string             `json:"currencyCode"` // Label only, no FX
	LineItems         []LineItem         `json:"lineItems,omitempty"`
	Discount          decimal.Decimal    `json:"discount"` // Flat amount, applied pre-tax
	AdditionalCharges []AdditionalCharge `json:"additionalCharges,omitempty"`
	TaxRate           decimal.Decimal    `json:"taxRate"` // Fraction in [0,1]
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxAmount         decimal.Decimal    `json:"taxAmount"`
	ChargesTotal      decimal.Decimal    `json:"chargesTotal"`
	Total             decimal.Decimal    `json:"total"`
	Status            InvoiceStatus      `json:"status"` // Cache; re-derived on read
	SentAt            *time.Time         `json:"sentAt,omitempty"`
	ViewedAt          *time.Time         `json:"viewedAt,omitempty"`
	VoidedAt          *time.Time         `json:"voidedAt,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	AuditFields
}

// IsTerminal reports whether no payment-driven transition can leave the
// invoice's current status.
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusVoid
}
