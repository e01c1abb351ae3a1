package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
)

// ReceiptRepositoryFacade defines persistence operations for receipts.
type ReceiptRepositoryFacade interface {
	// SaveReceiptInTx inserts a receipt inside tx. A second receipt for the
	// same payment returns ErrDuplicate.
	SaveReceiptInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error

	// FindReceiptByPaymentID retrieves the receipt issued for a payment, or
	// ErrNotFound when the payment never completed.
	FindReceiptByPaymentID(ctx context.Context, paymentID string) (*domain.Receipt, error)

	// FindReceiptByPaymentIDInTx is FindReceiptByPaymentID inside the
	// caller's transaction, used for the idempotency pre-check.
	FindReceiptByPaymentIDInTx(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Receipt, error)

	// FindLatestReceiptNumberInTx returns the most recently issued receipt
	// number for the account inside tx, or ErrNotFound when there is none.
	FindLatestReceiptNumberInTx(ctx context.Context, tx pgx.Tx, accountID string) (string, error)
}
