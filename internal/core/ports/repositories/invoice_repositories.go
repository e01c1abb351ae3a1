package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its line items and charges.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceByIDForUpdate retrieves the invoice row under an exclusive
	// lock inside tx, serializing concurrent payment applications.
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error)

	// FindLatestInvoiceNumber returns the number of the most recently created
	// invoice for the account, or ErrNotFound when the account has none.
	FindLatestInvoiceNumber(ctx context.Context, accountID string) (string, error)

	// ListInvoicesByAccount retrieves a paginated list of invoices using
	// token-based pagination, optionally filtered by status.
	ListInvoicesByAccount(ctx context.Context, accountID string, limit int, nextToken *string, status *string) ([]domain.Invoice, *string, error)

	// ListPastDueInvoiceIDs returns ids of invoices whose due date has passed
	// and whose cached status is not terminal, for the overdue sweep.
	ListPastDueInvoiceIDs(ctx context.Context, asOf time.Time, limit int) ([]string, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists the invoice with its line items and charges in one
	// transaction. A duplicate (account, number) pair returns ErrConflict.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoiceStatusInTx refreshes the cached status column inside tx.
	UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error

	// UpdateInvoiceStatus refreshes the cached status column outside any
	// caller transaction.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error

	// MarkInvoiceSent stamps sent_at. Only the first call has any effect.
	MarkInvoiceSent(ctx context.Context, invoiceID string, sentAt time.Time, updatedBy string) error

	// MarkInvoiceViewed stamps viewed_at. Only the first call has any effect;
	// the status upgrade never downgrades anything.
	MarkInvoiceViewed(ctx context.Context, invoiceID string, viewedAt time.Time) error

	// MarkInvoiceVoided stamps voided_at and sets the terminal VOID status.
	MarkInvoiceVoided(ctx context.Context, invoiceID string, voidedAt time.Time, updatedBy string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}

// InvoiceRepositoryWithTx extends InvoiceRepositoryFacade with transaction
// capabilities
type InvoiceRepositoryWithTx interface {
	InvoiceRepositoryFacade
	TransactionManager
}
