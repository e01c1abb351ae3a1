package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	"github.com/quillbooks/invoicing_app/internal/models"
	"github.com/quillbooks/invoicing_app/internal/utils/mapping"
	"github.com/quillbooks/invoicing_app/internal/utils/pagination"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryWithTx {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryWithTx
var _ portsrepo.InvoiceRepositoryWithTx = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, account_id, invoice_number, customer_id, issue_date, due_date,
	currency_code, discount, tax_rate, subtotal, tax_amount, charges_total, total,
	status, sent_at, viewed_at, voided_at, notes,
	created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.AccountID,
		&m.InvoiceNumber,
		&m.CustomerID,
		&m.IssueDate,
		&m.DueDate,
		&m.CurrencyCode,
		&m.Discount,
		&m.TaxRate,
		&m.Subtotal,
		&m.TaxAmount,
		&m.ChargesTotal,
		&m.Total,
		&m.Status,
		&m.SentAt,
		&m.ViewedAt,
		&m.VoidedAt,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveInvoice persists the invoice with its line items and charges in a single
// DB transaction. A duplicate (account_id, invoice_number) pair maps to
// ErrConflict so the service can retry with a fresh number.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelInvoice := mapping.ToModelInvoice(invoice)
	invoiceQuery := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, invoiceQuery,
		modelInvoice.InvoiceID,
		modelInvoice.AccountID,
		modelInvoice.InvoiceNumber,
		modelInvoice.CustomerID,
		modelInvoice.IssueDate,
		modelInvoice.DueDate,
		modelInvoice.CurrencyCode,
		modelInvoice.Discount,
		modelInvoice.TaxRate,
		modelInvoice.Subtotal,
		modelInvoice.TaxAmount,
		modelInvoice.ChargesTotal,
		modelInvoice.Total,
		modelInvoice.Status,
		modelInvoice.SentAt,
		modelInvoice.ViewedAt,
		modelInvoice.VoidedAt,
		modelInvoice.Notes,
		modelInvoice.CreatedAt,
		modelInvoice.CreatedBy,
		modelInvoice.LastUpdatedAt,
		modelInvoice.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on (account_id, invoice_number)
				return fmt.Errorf("%w: invoice number %s already exists for account %s", apperrors.ErrConflict, modelInvoice.InvoiceNumber, modelInvoice.AccountID)
			}
		}
		return apperrors.NewAppError(500, "failed to insert invoice "+modelInvoice.InvoiceID, err)
	}

	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO invoice_line_items (line_item_id, invoice_id, description, quantity, unit_rate, unit, per_item_tax, total, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, item := range invoice.LineItems {
		modelItem := mapping.ToModelLineItem(item)
		batch.Queue(itemQuery,
			modelItem.LineItemID,
			modelItem.InvoiceID,
			modelItem.Description,
			modelItem.Quantity,
			modelItem.UnitRate,
			modelItem.Unit,
			modelItem.PerItemTax,
			modelItem.Total,
			modelItem.Position,
		)
	}
	chargeQuery := `
		INSERT INTO invoice_charges (charge_id, invoice_id, name, amount, position)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, charge := range invoice.AdditionalCharges {
		modelCharge := mapping.ToModelCharge(charge)
		batch.Queue(chargeQuery,
			modelCharge.ChargeID,
			modelCharge.InvoiceID,
			modelCharge.Name,
			modelCharge.Amount,
			modelCharge.Position,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert line items for invoice "+modelInvoice.InvoiceID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	return nil
}

// FindInvoiceByID retrieves an invoice with its line items and charges.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	modelInvoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by ID "+invoiceID, err)
	}

	items, err := r.findLineItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	charges, err := r.findCharges(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	domainInvoice := mapping.ToDomainInvoice(modelInvoice)
	domainInvoice.LineItems = items
	domainInvoice.AdditionalCharges = charges
	return &domainInvoice, nil
}

// FindInvoiceByIDForUpdate locks the invoice row inside tx. Line items are not
// loaded; payment application only needs the header.
func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`
	modelInvoice, err := scanInvoice(tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock invoice "+invoiceID, err)
	}
	domainInvoice := mapping.ToDomainInvoice(modelInvoice)
	return &domainInvoice, nil
}

func (r *PgxInvoiceRepository) findLineItems(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	query := `
		SELECT line_item_id, invoice_id, description, quantity, unit_rate, unit, per_item_tax, total, position
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for invoice "+invoiceID, err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(
			&item.LineItemID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.UnitRate,
			&item.Unit,
			&item.PerItemTax,
			&item.Total,
			&item.Position,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item row for invoice "+invoiceID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line item rows for invoice "+invoiceID, err)
	}
	return mapping.ToDomainLineItemSlice(items), nil
}

func (r *PgxInvoiceRepository) findCharges(ctx context.Context, invoiceID string) ([]domain.AdditionalCharge, error) {
	query := `
		SELECT charge_id, invoice_id, name, amount, position
		FROM invoice_charges
		WHERE invoice_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query charges for invoice "+invoiceID, err)
	}
	defer rows.Close()

	charges := []models.AdditionalCharge{}
	for rows.Next() {
		var charge models.AdditionalCharge
		if err := rows.Scan(
			&charge.ChargeID,
			&charge.InvoiceID,
			&charge.Name,
			&charge.Amount,
			&charge.Position,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan charge row for invoice "+invoiceID, err)
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating charge rows for invoice "+invoiceID, err)
	}
	return mapping.ToDomainChargeSlice(charges), nil
}

// FindLatestInvoiceNumber returns the number of the most recently created
// invoice for the account.
func (r *PgxInvoiceRepository) FindLatestInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	query := `
		SELECT invoice_number
		FROM invoices
		WHERE account_id = $1
		ORDER BY created_at DESC, invoice_id DESC
		LIMIT 1;
	`
	var number string
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to find latest invoice number for account "+accountID, err)
	}
	return number, nil
}

// ListInvoicesByAccount retrieves a paginated list of invoices using
// token-based pagination, newest issue date first.
func (r *PgxInvoiceRepository) ListInvoicesByAccount(ctx context.Context, accountID string, limit int, nextToken *string, status *string) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to decide whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + invoiceColumns + ` FROM invoices WHERE account_id = $1`
	args := []interface{}{accountID}

	if status != nil && *status != "" {
		args = append(args, *status)
		baseQuery += ` AND status = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastIssueDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastIssueDate, lastCreatedAt)
		baseQuery += ` AND (issue_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY issue_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query invoices for account "+accountID, err)
	}
	defer rows.Close()

	invoices := make([]models.Invoice, 0, fetchLimit)
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan invoice row for account "+accountID, err)
		}
		invoices = append(invoices, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating invoice rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(invoices) > limit {
		last := invoices[limit-1]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		nextTokenVal = &token
		invoices = invoices[:limit]
	}

	results := make([]domain.Invoice, len(invoices))
	for i, m := range invoices {
		results[i] = mapping.ToDomainInvoice(m)
	}
	return results, nextTokenVal, nil
}

// ListPastDueInvoiceIDs returns ids of invoices whose due date has passed and
// whose cached status may still need the overdue downgrade.
func (r *PgxInvoiceRepository) ListPastDueInvoiceIDs(ctx context.Context, asOf time.Time, limit int) ([]string, error) {
	query := `
		SELECT invoice_id
		FROM invoices
		WHERE due_date < $1
		  AND sent_at IS NOT NULL
		  AND status NOT IN ('PAID', 'VOID', 'OVERDUE')
		ORDER BY due_date
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query past-due invoices", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan past-due invoice id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating past-due invoice rows", err)
	}
	return ids, nil
}

// UpdateInvoiceStatusInTx refreshes the cached status column inside tx.
func (r *PgxInvoiceRepository) UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, last_updated_by = $3, last_updated_at = $4
		WHERE invoice_id = $1;
	`
	tag, err := tx.Exec(ctx, query, invoiceID, models.InvoiceStatus(status), updatedBy, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateInvoiceStatus refreshes the cached status column outside any caller
// transaction.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, last_updated_by = $3, last_updated_at = $4
		WHERE invoice_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, invoiceID, models.InvoiceStatus(status), updatedBy, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkInvoiceSent stamps sent_at once; repeat sends leave the original stamp.
func (r *PgxInvoiceRepository) MarkInvoiceSent(ctx context.Context, invoiceID string, sentAt time.Time, updatedBy string) error {
	query := `
		UPDATE invoices
		SET sent_at = $2, last_updated_by = $3, last_updated_at = $2
		WHERE invoice_id = $1 AND sent_at IS NULL;
	`
	if _, err := r.Pool.Exec(ctx, query, invoiceID, sentAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to mark invoice "+invoiceID+" sent", err)
	}
	return nil
}

// MarkInvoiceViewed stamps viewed_at once.
func (r *PgxInvoiceRepository) MarkInvoiceViewed(ctx context.Context, invoiceID string, viewedAt time.Time) error {
	query := `
		UPDATE invoices
		SET viewed_at = $2, last_updated_at = $2
		WHERE invoice_id = $1 AND viewed_at IS NULL;
	`
	if _, err := r.Pool.Exec(ctx, query, invoiceID, viewedAt); err != nil {
		return apperrors.NewAppError(500, "failed to mark invoice "+invoiceID+" viewed", err)
	}
	return nil
}

// MarkInvoiceVoided stamps voided_at and fixes the terminal status in one
// statement.
func (r *PgxInvoiceRepository) MarkInvoiceVoided(ctx context.Context, invoiceID string, voidedAt time.Time, updatedBy string) error {
	query := `
		UPDATE invoices
		SET voided_at = $2, status = 'VOID', last_updated_by = $3, last_updated_at = $2
		WHERE invoice_id = $1 AND voided_at IS NULL;
	`
	if _, err := r.Pool.Exec(ctx, query, invoiceID, voidedAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to void invoice "+invoiceID, err)
	}
	return nil
}
