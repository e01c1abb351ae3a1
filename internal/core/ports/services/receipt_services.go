package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
)

// ReceiptSvcFacade issues receipts for completed payments.
type ReceiptSvcFacade interface {
	// IssueReceiptInTx allocates the next receipt number and inserts the
	// receipt inside the caller's transaction. Issuance is idempotent per
	// payment: a second call for the same payment returns the existing
	// receipt unchanged.
	IssueReceiptInTx(ctx context.Context, tx pgx.Tx, accountID string, payment *domain.Payment) (*domain.Receipt, error)

	// GetReceiptByPaymentID retrieves the receipt issued for a payment.
	// Receipts owned by another account are reported as missing.
	GetReceiptByPaymentID(ctx context.Context, accountID string, paymentID string) (*domain.Receipt, error)
}
