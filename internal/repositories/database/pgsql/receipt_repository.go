package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	"github.com/quillbooks/invoicing_app/internal/models"
	"github.com/quillbooks/invoicing_app/internal/utils/mapping"
)

type PgxReceiptRepository struct {
	BaseRepository
}

// newPgxReceiptRepository creates a new repository for receipt data.
func newPgxReceiptRepository(pool *pgxpool.Pool) portsrepo.ReceiptRepositoryFacade {
	return &PgxReceiptRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxReceiptRepository implements portsrepo.ReceiptRepositoryFacade
var _ portsrepo.ReceiptRepositoryFacade = (*PgxReceiptRepository)(nil)

const receiptColumns = `receipt_id, payment_id, account_id, receipt_number, amount, issued_at, corrects_receipt_id`

func scanReceipt(row pgx.Row) (models.Receipt, error) {
	var m models.Receipt
	err := row.Scan(
		&m.ReceiptID,
		&m.PaymentID,
		&m.AccountID,
		&m.ReceiptNumber,
		&m.Amount,
		&m.IssuedAt,
		&m.CorrectsReceiptID,
	)
	return m, err
}

// SaveReceiptInTx inserts a receipt inside tx. A second receipt for the same
// payment maps to ErrDuplicate.
func (r *PgxReceiptRepository) SaveReceiptInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error {
	m := mapping.ToModelReceipt(receipt)
	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		m.ReceiptID,
		m.PaymentID,
		m.AccountID,
		m.ReceiptNumber,
		m.Amount,
		m.IssuedAt,
		m.CorrectsReceiptID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on payment_id or receipt_number
				return fmt.Errorf("%w: receipt already issued for payment %s", apperrors.ErrDuplicate, m.PaymentID)
			}
		}
		return apperrors.NewAppError(500, "failed to insert receipt "+m.ReceiptID, err)
	}
	return nil
}

// FindReceiptByPaymentID retrieves the receipt issued for a payment.
func (r *PgxReceiptRepository) FindReceiptByPaymentID(ctx context.Context, paymentID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE payment_id = $1;`
	m, err := scanReceipt(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find receipt for payment "+paymentID, err)
	}
	receipt := mapping.ToDomainReceipt(m)
	return &receipt, nil
}

// FindReceiptByPaymentIDInTx is FindReceiptByPaymentID inside the caller's
// transaction.
func (r *PgxReceiptRepository) FindReceiptByPaymentIDInTx(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE payment_id = $1;`
	m, err := scanReceipt(tx.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find receipt for payment "+paymentID, err)
	}
	receipt := mapping.ToDomainReceipt(m)
	return &receipt, nil
}

// FindLatestReceiptNumberInTx returns the most recently issued receipt number
// for the account inside tx.
func (r *PgxReceiptRepository) FindLatestReceiptNumberInTx(ctx context.Context, tx pgx.Tx, accountID string) (string, error) {
	query := `
		SELECT receipt_number
		FROM receipts
		WHERE account_id = $1
		ORDER BY issued_at DESC, receipt_id DESC
		LIMIT 1;
	`
	var number string
	err := tx.QueryRow(ctx, query, accountID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to find latest receipt number for account "+accountID, err)
	}
	return number, nil
}
