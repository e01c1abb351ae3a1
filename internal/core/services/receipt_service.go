package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/middleware"
	"github.com/quillbooks/invoicing_app/internal/utils/numbering"
)

// receiptService issues exactly one receipt per completed payment. Receipt
// numbers come from a sequence namespace independent of invoice numbers.
type receiptService struct {
	receiptRepo  portsrepo.ReceiptRepositoryFacade
	sequenceRepo portsrepo.SequenceRepositoryFacade
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(receiptRepo portsrepo.ReceiptRepositoryFacade, sequenceRepo portsrepo.SequenceRepositoryFacade) portssvc.ReceiptSvcFacade {
	return &receiptService{
		receiptRepo:  receiptRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Ensure receiptService implements the portssvc.ReceiptSvcFacade interface
var _ portssvc.ReceiptSvcFacade = (*receiptService)(nil)

// IssueReceiptInTx issues a receipt for a completed payment inside the
// caller's transaction. The call is idempotent: if a receipt already exists
// for the payment it is returned unchanged, so retried payment flows never
// produce a second receipt.
func (s *receiptService) IssueReceiptInTx(ctx context.Context, tx pgx.Tx, accountID string, payment *domain.Payment) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.receiptRepo.FindReceiptByPaymentIDInTx(ctx, tx, payment.PaymentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing receipt for payment %s: %w", payment.PaymentID, err)
	}

	template := domain.DefaultReceiptNumberTemplate
	counter, err := s.sequenceRepo.GetCounter(ctx, accountID, domain.SequenceNamespaceReceipt)
	switch {
	case err == nil:
		if counter.Template != "" {
			template = counter.Template
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// First receipt for this account.
	default:
		return nil, fmt.Errorf("failed to load receipt sequence counter for account %s: %w", accountID, err)
	}

	var candidate int64
	if numbering.HasSeqPlaceholder(template) {
		latest, err := s.receiptRepo.FindLatestReceiptNumberInTx(ctx, tx, accountID)
		switch {
		case err == nil:
			if seq, ok := numbering.ExtractTrailingSeq(latest); ok {
				candidate = seq + 1
			}
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to fetch latest receipt number for account %s: %w", accountID, err)
		}
	}

	next, err := s.sequenceRepo.AllocateNextInTx(ctx, tx, accountID, domain.SequenceNamespaceReceipt, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate receipt sequence for account %s: %w", accountID, err)
	}

	receipt := &domain.Receipt{
		ReceiptID:     uuid.NewString(),
		PaymentID:     payment.PaymentID,
		AccountID:     accountID,
		ReceiptNumber: numbering.Format(template, next, time.Now().UTC()),
		Amount:        payment.Amount,
		IssuedAt:      time.Now().UTC(),
	}

	if err := s.receiptRepo.SaveReceiptInTx(ctx, tx, *receipt); err != nil {
		// The invoice lock serializes issuance; a unique-constraint hit here
		// aborts the transaction, so the caller retries with fresh state.
		return nil, fmt.Errorf("failed to save receipt for payment %s: %w", payment.PaymentID, err)
	}

	logger.Info("Issued receipt",
		slog.String("receipt_id", receipt.ReceiptID),
		slog.String("receipt_number", receipt.ReceiptNumber),
		slog.String("payment_id", payment.PaymentID))
	return receipt, nil
}

// GetReceiptByPaymentID returns the receipt issued for a payment, if any.
// Receipts belonging to another account read as missing.
func (s *receiptService) GetReceiptByPaymentID(ctx context.Context, accountID string, paymentID string) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no receipt issued for payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to fetch receipt for payment %s: %w", paymentID, err)
	}
	if receipt.AccountID != accountID {
		return nil, fmt.Errorf("%w: no receipt issued for payment %s", apperrors.ErrNotFound, paymentID)
	}
	return receipt, nil
}
