package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	"github.com/quillbooks/invoicing_app/internal/models"
	"github.com/quillbooks/invoicing_app/internal/utils/mapping"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryWithTx
var _ portsrepo.PaymentRepositoryWithTx = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, invoice_id, amount, method, reference, status, recorded_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.InvoiceID,
		&m.Amount,
		&m.Method,
		&m.Reference,
		&m.Status,
		&m.RecordedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPaymentByID retrieves a single payment.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by ID "+paymentID, err)
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

// FindPaymentByIDForUpdate locks the payment row inside tx.
func (r *PgxPaymentRepository) FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1 FOR UPDATE;`
	m, err := scanPayment(tx.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock payment "+paymentID, err)
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

// FindPaymentsByInvoice retrieves all payments against an invoice, oldest
// first.
func (r *PgxPaymentRepository) FindPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY recorded_at, payment_id;`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments for invoice "+invoiceID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row for invoice "+invoiceID, err)
		}
		payments = append(payments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows for invoice "+invoiceID, err)
	}
	return mapping.ToDomainPaymentSlice(payments), nil
}

const sumCompletedQuery = `
	SELECT COALESCE(SUM(amount), 0)
	FROM payments
	WHERE invoice_id = $1 AND status = 'COMPLETED';
`

// SumCompletedPayments returns the completed-payment total for an invoice.
func (r *PgxPaymentRepository) SumCompletedPayments(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, sumCompletedQuery, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum payments for invoice "+invoiceID, err)
	}
	return sum, nil
}

// SumCompletedPaymentsInTx is SumCompletedPayments inside the caller's
// transaction.
func (r *PgxPaymentRepository) SumCompletedPaymentsInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, sumCompletedQuery, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum payments for invoice "+invoiceID, err)
	}
	return sum, nil
}

// SavePaymentInTx inserts a payment inside tx. A duplicate
// (invoice_id, reference) pair maps to ErrConflict.
func (r *PgxPaymentRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentID,
		m.InvoiceID,
		m.Amount,
		m.Method,
		m.Reference,
		m.Status,
		m.RecordedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on (invoice_id, reference)
				return fmt.Errorf("%w: payment reference %s already used for invoice %s", apperrors.ErrConflict, m.Reference, m.InvoiceID)
			}
		}
		return apperrors.NewAppError(500, "failed to insert payment "+m.PaymentID, err)
	}
	return nil
}

// UpdatePaymentStatusInTx moves a payment to a new status inside tx.
func (r *PgxPaymentRepository) UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, paymentID string, status domain.PaymentStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $2, last_updated_by = $3, last_updated_at = $4
		WHERE payment_id = $1;
	`
	tag, err := tx.Exec(ctx, query, paymentID, models.PaymentStatus(status), updatedBy, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for payment "+paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
