package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/quillbooks/invoicing_app/internal/middleware"
	"github.com/quillbooks/invoicing_app/internal/utils/invoicecalc"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// invoiceService owns the invoice lifecycle: creation with server-side totals
// and numbering, lifecycle transitions and balance-aware reads.
type invoiceService struct {
	invoiceRepo  portsrepo.InvoiceRepositoryWithTx
	paymentRepo  portsrepo.PaymentRepositoryFacade
	numberingSvc portssvc.NumberingSvcFacade
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryWithTx,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	numberingSvc portssvc.NumberingSvcFacade,
) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		numberingSvc: numberingSvc,
	}
}

// Ensure invoiceService implements the portssvc.InvoiceSvcFacade interface
var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// CreateInvoice computes the invoice totals, allocates the next invoice number
// and persists the draft. A number collision with a concurrent creation is
// retried exactly once with a freshly allocated number.
func (s *invoiceService) CreateInvoice(ctx context.Context, accountID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.DueDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: due date must not be before issue date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	invoiceID := uuid.NewString()

	items := make([]domain.LineItem, len(req.LineItems))
	for i, li := range req.LineItems {
		items[i] = domain.LineItem{
			LineItemID:  uuid.NewString(),
			InvoiceID:   invoiceID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			Unit:        li.Unit,
			PerItemTax:  li.PerItemTax,
			Position:    i,
		}
	}
	if err := invoicecalc.ApplyToItems(items); err != nil {
		return nil, err
	}

	charges := make([]domain.AdditionalCharge, len(req.AdditionalCharges))
	for i, ch := range req.AdditionalCharges {
		charges[i] = domain.AdditionalCharge{
			ChargeID:  uuid.NewString(),
			InvoiceID: invoiceID,
			Name:      ch.Name,
			Amount:    invoicecalc.Round2(ch.Amount),
			Position:  i,
		}
	}

	totals, err := invoicecalc.Aggregate(items, req.Discount, charges, req.TaxRate)
	if err != nil {
		return nil, err
	}

	invoice := domain.Invoice{
		InvoiceID:         invoiceID,
		AccountID:         accountID,
		CustomerID:        req.CustomerID,
		IssueDate:         req.IssueDate,
		DueDate:           req.DueDate,
		CurrencyCode:      req.CurrencyCode,
		LineItems:         items,
		Discount:          invoicecalc.Round2(req.Discount),
		AdditionalCharges: charges,
		TaxRate:           req.TaxRate,
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.TaxAmount,
		ChargesTotal:      totals.ChargesTotal,
		Total:             totals.Total,
		Status:            domain.InvoiceStatusDraft,
		Notes:             req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	for attempt := 0; ; attempt++ {
		number, err := s.numberingSvc.NextInvoiceNumber(ctx, accountID)
		if err != nil {
			return nil, err
		}
		invoice.InvoiceNumber = number

		err = s.invoiceRepo.SaveInvoice(ctx, invoice)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt == 0 {
			logger.Warn("Invoice number collision, retrying with a fresh number",
				slog.String("account_id", accountID), slog.String("invoice_number", number))
			continue
		}
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	logger.Info("Created invoice",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("account_id", accountID),
		slog.String("total", invoice.Total.String()))
	return &invoice, nil
}

// GetInvoice retrieves an invoice together with its balance due. The returned
// status is derived from the live ledger; the cached column is never trusted
// on a read.
func (s *invoiceService) GetInvoice(ctx context.Context, accountID string, invoiceID string) (*domain.Invoice, decimal.Decimal, error) {
	invoice, err := s.findOwnedInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	balanceDue, err := s.deriveLiveStatus(ctx, invoice)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return invoice, balanceDue, nil
}

// ListInvoices retrieves a page of the account's invoices with derived
// statuses and balances.
func (s *invoiceService) ListInvoices(ctx context.Context, accountID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if params.Status != nil && !domain.InvoiceStatus(*params.Status).IsValid() {
		return nil, fmt.Errorf("%w: unknown invoice status %q", apperrors.ErrValidation, *params.Status)
	}

	invoices, nextToken, err := s.invoiceRepo.ListInvoicesByAccount(ctx, accountID, limit, params.NextToken, params.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for account %s: %w", accountID, err)
	}

	resp := &dto.ListInvoicesResponse{
		Invoices:  make([]dto.InvoiceResponse, len(invoices)),
		NextToken: nextToken,
	}
	for i := range invoices {
		balanceDue, err := s.deriveLiveStatus(ctx, &invoices[i])
		if err != nil {
			return nil, err
		}
		resp.Invoices[i] = dto.ToInvoiceResponse(&invoices[i], balanceDue)
	}
	return resp, nil
}

// MarkInvoiceSent records the explicit send action. Sending is a one-way
// upgrade; repeating it is a no-op rather than an error.
func (s *invoiceService) MarkInvoiceSent(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.findOwnedInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if invoice.VoidedAt != nil {
		return nil, decimal.Zero, fmt.Errorf("%w: cannot send a void invoice", apperrors.ErrConflict)
	}

	now := time.Now().UTC()
	if invoice.SentAt == nil {
		if err := s.invoiceRepo.MarkInvoiceSent(ctx, invoiceID, now, userID); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to mark invoice %s sent: %w", invoiceID, err)
		}
		invoice.SentAt = &now
		logger.Info("Marked invoice sent", slog.String("invoice_id", invoiceID))
	}

	balanceDue, err := s.deriveLiveStatus(ctx, invoice)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoiceID, invoice.Status, userID, now); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to refresh invoice status for %s: %w", invoiceID, err)
	}
	return invoice, balanceDue, nil
}

// VoidInvoice moves the invoice to the terminal VOID state. A settled invoice
// cannot be voided; issue a correcting document instead.
func (s *invoiceService) VoidInvoice(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.findOwnedInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	balanceDue, err := s.deriveLiveStatus(ctx, invoice)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if invoice.VoidedAt != nil {
		return invoice, balanceDue, nil
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, decimal.Zero, fmt.Errorf("%w: a paid invoice cannot be voided", apperrors.ErrConflict)
	}

	now := time.Now().UTC()
	if err := s.invoiceRepo.MarkInvoiceVoided(ctx, invoiceID, now, userID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to void invoice %s: %w", invoiceID, err)
	}
	invoice.VoidedAt = &now
	invoice.Status = domain.InvoiceStatusVoid

	logger.Info("Voided invoice", slog.String("invoice_id", invoiceID), slog.String("account_id", accountID))
	return invoice, balanceDue, nil
}

// RecordPublicView serves an invoice through its public link and stamps the
// first view. The viewed upgrade never downgrades a later status; derivation
// handles the precedence.
func (s *invoiceService) RecordPublicView(ctx context.Context, invoiceID string) (*domain.Invoice, decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, decimal.Zero, fmt.Errorf("%w: invoice with ID %s not found", apperrors.ErrNotFound, invoiceID)
		}
		return nil, decimal.Zero, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}

	if invoice.ViewedAt == nil && invoice.VoidedAt == nil {
		now := time.Now().UTC()
		if err := s.invoiceRepo.MarkInvoiceViewed(ctx, invoiceID, now); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to mark invoice %s viewed: %w", invoiceID, err)
		}
		invoice.ViewedAt = &now
		logger.Info("Recorded first public view", slog.String("invoice_id", invoiceID))
	}

	balanceDue, err := s.deriveLiveStatus(ctx, invoice)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return invoice, balanceDue, nil
}

// findOwnedInvoice loads an invoice and verifies account ownership.
// Cross-account ids are reported as missing, not forbidden.
func (s *invoiceService) findOwnedInvoice(ctx context.Context, accountID string, invoiceID string) (*domain.Invoice, error) {
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
	return invoice, nil
}

// deriveLiveStatus computes the invoice's balance due from completed payments,
// overwrites the in-memory status with the derived one and returns the
// balance. The persisted column stays untouched; it is refreshed on mutations
// and by the overdue sweep.
func (s *invoiceService) deriveLiveStatus(ctx context.Context, invoice *domain.Invoice) (decimal.Decimal, error) {
	paid, err := s.paymentRepo.SumCompletedPayments(ctx, invoice.InvoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments for invoice %s: %w", invoice.InvoiceID, err)
	}
	balanceDue := invoice.Total.Sub(paid)
	invoice.Status = domain.DeriveStatus(domain.StatusInput{
		Total:      invoice.Total,
		BalanceDue: balanceDue,
		DueDate:    invoice.DueDate,
		Now:        time.Now().UTC(),
		Sent:       invoice.SentAt != nil,
		Viewed:     invoice.ViewedAt != nil,
		Voided:     invoice.VoidedAt != nil,
	})
	return balanceDue, nil
}
