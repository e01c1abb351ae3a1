package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/middleware"
	"github.com/quillbooks/invoicing_app/internal/utils/numbering"
)

// numberingService allocates invoice numbers from the per-account sequence
// counter, cross-checked against the most recently issued invoice number.
type numberingService struct {
	sequenceRepo portsrepo.SequenceRepositoryFacade
	invoiceRepo  portsrepo.InvoiceReader
}

// NewNumberingService creates a new NumberingService.
func NewNumberingService(sequenceRepo portsrepo.SequenceRepositoryFacade, invoiceRepo portsrepo.InvoiceReader) portssvc.NumberingSvcFacade {
	return &numberingService{
		sequenceRepo: sequenceRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// Ensure numberingService implements the portssvc.NumberingSvcFacade interface
var _ portssvc.NumberingSvcFacade = (*numberingService)(nil)

// NextInvoiceNumber allocates the account's next invoice number.
//
// The persisted counter is never trusted on its own: when the template carries
// a {SEQ} placeholder, the trailing digits of the most recently issued number
// act as a floor, so a counter that lagged behind (older writes were
// best-effort) can never hand out a number that is already taken. The counter
// advance itself is a single atomic upsert.
func (s *numberingService) NextInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	template := domain.DefaultInvoiceNumberTemplate
	counter, err := s.sequenceRepo.GetCounter(ctx, accountID, domain.SequenceNamespaceInvoice)
	switch {
	case err == nil:
		if counter.Template != "" {
			template = counter.Template
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// First allocation for this account; the upsert creates the row.
	default:
		return "", fmt.Errorf("failed to load sequence counter for account %s: %w", accountID, err)
	}

	var candidate int64
	if numbering.HasSeqPlaceholder(template) {
		latest, err := s.invoiceRepo.FindLatestInvoiceNumber(ctx, accountID)
		switch {
		case err == nil:
			if seq, ok := numbering.ExtractTrailingSeq(latest); ok {
				candidate = seq + 1
			} else {
				logger.Warn("Latest invoice number has no parseable sequence, falling back to counter",
					slog.String("account_id", accountID), slog.String("latest_number", latest))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			// No invoices yet; the counter alone decides.
		default:
			return "", fmt.Errorf("failed to fetch latest invoice number for account %s: %w", accountID, err)
		}
	}

	next, err := s.sequenceRepo.AllocateNext(ctx, accountID, domain.SequenceNamespaceInvoice, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to allocate next invoice sequence for account %s: %w", accountID, err)
	}

	number := numbering.Format(template, next, time.Now().UTC())
	logger.Debug("Allocated invoice number", slog.String("account_id", accountID), slog.String("invoice_number", number))
	return number, nil
}
