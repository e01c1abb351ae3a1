package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	"github.com/quillbooks/invoicing_app/internal/middleware"
)

// sweepBatchSize bounds one sweep run so a backlog of stale invoices cannot
// hold the scheduler for minutes.
const sweepBatchSize = 500

// sweepActor is the audit identity stamped on status rows the sweep touches.
const sweepActor = "system:overdue-sweep"

// OverdueService periodically re-derives the cached status of invoices whose
// due date has passed. Reads always derive status live, so the sweep only
// keeps the persisted column (used by status-filtered listings) honest.
type OverdueService struct {
	invoiceRepo portsrepo.InvoiceRepositoryWithTx
	paymentRepo portsrepo.PaymentRepositoryFacade
	logger      *slog.Logger
	cron        *cron.Cron
}

// NewOverdueService creates a new OverdueService.
func NewOverdueService(invoiceRepo portsrepo.InvoiceRepositoryWithTx, paymentRepo portsrepo.PaymentRepositoryFacade, logger *slog.Logger) *OverdueService {
	return &OverdueService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// Start schedules the sweep with the given cron expression and runs it until
// Stop is called.
func (s *OverdueService) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx := middleware.WithLogger(context.Background(), s.logger)
		if err := s.RefreshOverdueStatuses(ctx); err != nil {
			s.logger.Error("Overdue sweep failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("Scheduled overdue sweep", slog.String("schedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *OverdueService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RefreshOverdueStatuses re-derives and rewrites the cached status of every
// past-due, non-terminal invoice in the current batch. Invoices deleted
// between the listing and the refresh are skipped.
func (s *OverdueService) RefreshOverdueStatuses(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	ids, err := s.invoiceRepo.ListPastDueInvoiceIDs(ctx, now, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list past-due invoices: %w", err)
	}

	refreshed := 0
	for _, id := range ids {
		invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to fetch invoice %s during sweep: %w", id, err)
		}

		paid, err := s.paymentRepo.SumCompletedPayments(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to sum payments for invoice %s during sweep: %w", id, err)
		}

		status := domain.DeriveStatus(domain.StatusInput{
			Total:      invoice.Total,
			BalanceDue: invoice.Total.Sub(paid),
			DueDate:    invoice.DueDate,
			Now:        now,
			Sent:       invoice.SentAt != nil,
			Viewed:     invoice.ViewedAt != nil,
			Voided:     invoice.VoidedAt != nil,
		})
		if status == invoice.Status {
			continue
		}
		if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, id, status, sweepActor, now); err != nil {
			return fmt.Errorf("failed to refresh status for invoice %s during sweep: %w", id, err)
		}
		refreshed++
	}

	if refreshed > 0 || len(ids) > 0 {
		logger.Info("Overdue sweep finished",
			slog.Int("candidates", len(ids)),
			slog.Int("refreshed", refreshed))
	}
	return nil
}
