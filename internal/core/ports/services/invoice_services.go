package services

import (
	"context"

	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	// GetInvoice retrieves an invoice with its current balance due. The
	// returned status is freshly derived from ledger truth, not the cache.
	GetInvoice(ctx context.Context, accountID string, invoiceID string) (*domain.Invoice, decimal.Decimal, error)

	// ListInvoices retrieves a paginated list of the account's invoices.
	ListInvoices(ctx context.Context, accountID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
}

// InvoiceWriterSvc defines write operations for invoices
type InvoiceWriterSvc interface {
	// CreateInvoice computes totals, assigns the next invoice number and
	// persists the draft.
	CreateInvoice(ctx context.Context, accountID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// MarkInvoiceSent records the explicit send action and returns the
	// invoice with its current balance due.
	MarkInvoiceSent(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error)

	// VoidInvoice moves the invoice to the terminal VOID state and returns
	// it with its current balance due.
	VoidInvoice(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error)

	// RecordPublicView serves the invoice for a public read and upgrades the
	// status to VIEWED when applicable.
	RecordPublicView(ctx context.Context, invoiceID string) (*domain.Invoice, decimal.Decimal, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
