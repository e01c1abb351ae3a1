package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a state conflict: duplicate invoice number, duplicate
// payment reference, or a concurrent-update mismatch. Safe to retry once with
// fresh state, never more than once.
var ErrConflict = errors.New("conflicting state")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// OverpaymentError is returned when a payment request exceeds the invoice's
// balance due. It carries the computed balance so the caller can surface it;
// the ledger never silently clamps the amount.
type OverpaymentError struct {
	InvoiceID  string
	Requested  decimal.Decimal
	BalanceDue decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds balance due %s on invoice %s",
		e.Requested.StringFixed(2), e.BalanceDue.StringFixed(2), e.InvoiceID)
}

// AppError wraps a lower-level failure (typically from the storage layer) with
// a status code and message. Services propagate these unchanged; only the
// handler layer translates them for the caller.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
