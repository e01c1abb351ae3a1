package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/quillbooks/invoicing_app/internal/middleware"
	"github.com/quillbooks/invoicing_app/internal/utils/invoicecalc"
)

var (
	// ErrInvoiceNotPayable is returned when a payment targets an invoice that
	// no longer accepts payments (void or already settled).
	ErrInvoiceNotPayable = fmt.Errorf("%w: invoice is not accepting payments", apperrors.ErrConflict)

	// ErrPaymentNotPending is returned when confirming a payment that is not
	// in the PENDING state.
	ErrPaymentNotPending = fmt.Errorf("%w: payment is not pending", apperrors.ErrConflict)
)

// paymentService applies payments against invoices. Every mutation runs in a
// single transaction holding an exclusive lock on the invoice row, so the
// overpayment check and the ledger write always see the same balance.
type paymentService struct {
	invoiceRepo portsrepo.InvoiceRepositoryWithTx
	paymentRepo portsrepo.PaymentRepositoryWithTx
	receiptSvc  portssvc.ReceiptSvcFacade
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	invoiceRepo portsrepo.InvoiceRepositoryWithTx,
	paymentRepo portsrepo.PaymentRepositoryWithTx,
	receiptSvc portssvc.ReceiptSvcFacade,
) portssvc.PaymentSvcFacade {
	return &paymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		receiptSvc:  receiptSvc,
	}
}

// Ensure paymentService implements the portssvc.PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// RecordPayment validates a payment against the invoice's live balance and
// applies it. When the payment completes immediately the receipt is issued in
// the same transaction; a pending payment leaves the balance untouched until
// confirmation.
func (s *paymentService) RecordPayment(ctx context.Context, accountID string, invoiceID string, req dto.RecordPaymentRequest, userID string) (*dto.RecordPaymentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount := invoicecalc.Round2(req.Amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	tx, err := s.paymentRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.paymentRepo.Rollback(ctx, tx)

	invoice, balanceDue, err := s.lockInvoiceForPayment(ctx, tx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(balanceDue) {
		return nil, &apperrors.OverpaymentError{
			InvoiceID:  invoiceID,
			Requested:  amount,
			BalanceDue: balanceDue,
		}
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:  uuid.NewString(),
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     req.Method,
		Reference:  req.Reference,
		Status:     domain.PaymentStatusCompleted,
		RecordedAt: now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if req.Pending {
		payment.Status = domain.PaymentStatusPending
	}

	if err := s.paymentRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: payment with reference %s already recorded against invoice %s", apperrors.ErrDuplicate, req.Reference, invoiceID)
		}
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	var receipt *domain.Receipt
	newBalance := balanceDue
	if payment.Status.CountsTowardBalance() {
		newBalance = balanceDue.Sub(amount)
		receipt, err = s.receiptSvc.IssueReceiptInTx(ctx, tx, accountID, &payment)
		if err != nil {
			return nil, err
		}
	}

	status, err := s.refreshInvoiceStatusInTx(ctx, tx, invoice, newBalance, now, userID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	logger.Info("Recorded payment",
		slog.String("payment_id", payment.PaymentID),
		slog.String("invoice_id", invoiceID),
		slog.String("amount", amount.String()),
		slog.String("payment_status", string(payment.Status)),
		slog.String("invoice_status", string(status)))

	invoice.Status = status
	return buildPaymentResponse(&payment, receipt, invoice, newBalance), nil
}

// ConfirmPayment moves a PENDING payment to COMPLETED. The balance check is
// repeated at confirmation time: payments completed while this one was pending
// may have shrunk the balance below the pending amount, and confirming then
// would overpay the invoice.
func (s *paymentService) ConfirmPayment(ctx context.Context, accountID string, paymentID string, userID string) (*dto.RecordPaymentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	pending, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment with ID %s not found", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	tx, err := s.paymentRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.paymentRepo.Rollback(ctx, tx)

	// Lock order is always invoice first, then payment.
	invoice, balanceDue, err := s.lockInvoiceForPayment(ctx, tx, accountID, pending.InvoiceID)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindPaymentByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	if payment.Amount.GreaterThan(balanceDue) {
		return nil, &apperrors.OverpaymentError{
			InvoiceID:  payment.InvoiceID,
			Requested:  payment.Amount,
			BalanceDue: balanceDue,
		}
	}

	now := time.Now().UTC()
	if err := s.paymentRepo.UpdatePaymentStatusInTx(ctx, tx, paymentID, domain.PaymentStatusCompleted, userID, now); err != nil {
		return nil, fmt.Errorf("failed to complete payment %s: %w", paymentID, err)
	}
	payment.Status = domain.PaymentStatusCompleted
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	receipt, err := s.receiptSvc.IssueReceiptInTx(ctx, tx, accountID, payment)
	if err != nil {
		return nil, err
	}

	newBalance := balanceDue.Sub(payment.Amount)
	status, err := s.refreshInvoiceStatusInTx(ctx, tx, invoice, newBalance, now, userID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit payment confirmation: %w", err)
	}

	logger.Info("Confirmed payment",
		slog.String("payment_id", paymentID),
		slog.String("invoice_id", payment.InvoiceID),
		slog.String("invoice_status", string(status)))

	invoice.Status = status
	return buildPaymentResponse(payment, receipt, invoice, newBalance), nil
}

// ListPayments retrieves all payments recorded against an invoice, oldest
// first.
func (s *paymentService) ListPayments(ctx context.Context, accountID string, invoiceID string) (*dto.ListPaymentsResponse, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice with ID %s not found", apperrors.ErrNotFound, invoiceID)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}
	if invoice.AccountID != accountID {
		return nil, fmt.Errorf("%w: invoice with ID %s not found", apperrors.ErrNotFound, invoiceID)
	}

	payments, err := s.paymentRepo.FindPaymentsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for invoice %s: %w", invoiceID, err)
	}
	return &dto.ListPaymentsResponse{Payments: dto.ToPaymentResponses(payments)}, nil
}

// lockInvoiceForPayment locks the invoice row, verifies ownership and
// payability, and returns the invoice with its current balance due.
func (s *paymentService) lockInvoiceForPayment(ctx context.Context, tx pgx.Tx, accountID string, invoiceID string) (*domain.Invoice, decimal.Decimal, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, decimal.Zero, fmt.Errorf("%w: invoice with ID %s not found", apperrors.ErrNotFound, invoiceID)
		}
		return nil, decimal.Zero, fmt.Errorf("failed to lock invoice %s: %w", invoiceID, err)
	}
	// Cross-account ids are reported as missing, not forbidden.
	if invoice.AccountID != accountID {
		return nil, decimal.Zero, fmt.Errorf("%w: invoice with ID %s not found", apperrors.ErrNotFound, invoiceID)
	}
	if invoice.VoidedAt != nil {
		return nil, decimal.Zero, ErrInvoiceNotPayable
	}

	paid, err := s.paymentRepo.SumCompletedPaymentsInTx(ctx, tx, invoiceID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to sum payments for invoice %s: %w", invoiceID, err)
	}

	balanceDue := invoice.Total.Sub(paid)
	if balanceDue.LessThanOrEqual(domain.PaidEpsilon) && paid.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, ErrInvoiceNotPayable
	}
	return invoice, balanceDue, nil
}

// refreshInvoiceStatusInTx re-derives the invoice status from the post-write
// balance and updates the cached column in the same transaction.
func (s *paymentService) refreshInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, balanceDue decimal.Decimal, now time.Time, userID string) (domain.InvoiceStatus, error) {
	status := domain.DeriveStatus(domain.StatusInput{
		Total:      invoice.Total,
		BalanceDue: balanceDue,
		DueDate:    invoice.DueDate,
		Now:        now,
		Sent:       invoice.SentAt != nil,
		Viewed:     invoice.ViewedAt != nil,
		Voided:     invoice.VoidedAt != nil,
	})
	if err := s.invoiceRepo.UpdateInvoiceStatusInTx(ctx, tx, invoice.InvoiceID, status, userID, now); err != nil {
		return "", fmt.Errorf("failed to refresh invoice status for %s: %w", invoice.InvoiceID, err)
	}
	return status, nil
}

func buildPaymentResponse(payment *domain.Payment, receipt *domain.Receipt, invoice *domain.Invoice, balanceDue decimal.Decimal) *dto.RecordPaymentResponse {
	resp := &dto.RecordPaymentResponse{
		Payment: dto.ToPaymentResponse(payment),
		Invoice: dto.ToInvoiceResponse(invoice, balanceDue),
	}
	if receipt != nil {
		r := dto.ToReceiptResponse(receipt)
		resp.Receipt = &r
	}
	return resp
}
