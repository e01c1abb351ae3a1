package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	invoiceRepo := newPgxInvoiceRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	receiptRepo := newPgxReceiptRepository(dbPool)
	sequenceRepo := newPgxSequenceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		InvoiceRepo:  invoiceRepo,
		PaymentRepo:  paymentRepo,
		ReceiptRepo:  receiptRepo,
		SequenceRepo: sequenceRepo,
	}
}
