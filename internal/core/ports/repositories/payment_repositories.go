package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a single payment.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentByIDForUpdate retrieves the payment row under an exclusive
	// lock inside tx.
	FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error)

	// FindPaymentsByInvoice retrieves all payments recorded against an
	// invoice, oldest first.
	FindPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error)

	// SumCompletedPayments returns the completed-payment total for an invoice.
	SumCompletedPayments(ctx context.Context, invoiceID string) (decimal.Decimal, error)

	// SumCompletedPaymentsInTx is SumCompletedPayments inside the caller's
	// transaction, so the balance check and the write see the same ledger.
	SumCompletedPaymentsInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (decimal.Decimal, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePaymentInTx inserts a payment inside tx. A duplicate
	// (invoice, reference) pair returns ErrConflict.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error

	// UpdatePaymentStatusInTx moves a payment to a new status inside tx.
	UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, paymentID string, status domain.PaymentStatus, updatedBy string, updatedAt time.Time) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction
// capabilities
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
