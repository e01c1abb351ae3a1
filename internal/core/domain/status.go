package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
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

// IsValid checks whether s is a known invoice status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed,
		InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusPaid,
		InvoiceStatusVoid:
		return true
	}
	return false
}

// PaidEpsilon absorbs residual rounding when deciding whether a balance has
// reached zero: anything at or below half a cent counts as settled.
var PaidEpsilon = decimal.New(5, -3) // 0.005

// StatusInput is everything the status derivation depends on. Status is never
// independent mutable state: given the same input, DeriveStatus always yields
// the same answer, so a persisted status column is only ever a cache.
type StatusInput struct {
	Total      decimal.Decimal
	BalanceDue decimal.Decimal
	DueDate    time.Time
	Now        time.Time
	Sent       bool
	Viewed     bool
	Voided     bool
}

// DeriveStatus computes the invoice status from ledger truth.
//
// Precedence: VOID is terminal and beats everything. A settled balance means
// PAID regardless of due date. A partial payment reports PARTIALLY_PAID even
// when the invoice is past due; OVERDUE applies only while nothing has been
// paid. VIEWED and SENT are explicit one-way upgrades over DRAFT.
func DeriveStatus(in StatusInput) InvoiceStatus {
	if in.Voided {
		return InvoiceStatusVoid
	}
	totalPaid := in.Total.Sub(in.BalanceDue)
	if in.BalanceDue.LessThanOrEqual(PaidEpsilon) && totalPaid.GreaterThan(decimal.Zero) {
		return InvoiceStatusPaid
	}
	if totalPaid.GreaterThan(decimal.Zero) {
		return InvoiceStatusPartiallyPaid
	}
	overdue := in.Sent && in.DueDate.Before(in.Now) && in.BalanceDue.GreaterThan(PaidEpsilon)
	if overdue {
		return InvoiceStatusOverdue
	}
	if in.Viewed {
		return InvoiceStatusViewed
	}
	if in.Sent {
		return InvoiceStatusSent
	}
	return InvoiceStatusDraft
}
