package services

import (
	"context"

	"github.com/quillbooks/invoicing_app/internal/dto"
)

// PaymentLedgerSvc defines the payment application operations. All of them
// serialize per invoice: the balance check and the ledger write happen under
// one exclusive lock.
type PaymentLedgerSvc interface {
	// RecordPayment validates and applies a payment against an invoice,
	// refreshes the invoice status and, when the payment completes
	// immediately, issues its receipt. The whole operation commits or rolls
	// back as one unit.
	RecordPayment(ctx context.Context, accountID string, invoiceID string, req dto.RecordPaymentRequest, userID string) (*dto.RecordPaymentResponse, error)

	// ConfirmPayment moves a PENDING payment to COMPLETED, re-checks the
	// balance and issues the receipt.
	ConfirmPayment(ctx context.Context, accountID string, paymentID string, userID string) (*dto.RecordPaymentResponse, error)

	// ListPayments retrieves the payments recorded against an invoice.
	ListPayments(ctx context.Context, accountID string, invoiceID string) (*dto.ListPaymentsResponse, error)
}

// PaymentSvcFacade is the complete payment service surface.
type PaymentSvcFacade interface {
	PaymentLedgerSvc
}
