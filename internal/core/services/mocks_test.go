package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/quillbooks/invoicing_app/internal/core/domain"
)

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindLatestInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoicesByAccount(ctx context.Context, accountID string, limit int, nextToken *string, status *string) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken, status)
	var invoices []domain.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]domain.Invoice)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return invoices, token, args.Error(2)
}

func (m *MockInvoiceRepository) ListPastDueInvoiceIDs(ctx context.Context, asOf time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatusInTx(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, invoiceID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, invoiceID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkInvoiceSent(ctx context.Context, invoiceID string, sentAt time.Time, updatedBy string) error {
	args := m.Called(ctx, invoiceID, sentAt, updatedBy)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkInvoiceViewed(ctx context.Context, invoiceID string, viewedAt time.Time) error {
	args := m.Called(ctx, invoiceID, viewedAt)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkInvoiceVoided(ctx context.Context, invoiceID string, voidedAt time.Time, updatedBy string) error {
	args := m.Called(ctx, invoiceID, voidedAt, updatedBy)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInvoiceRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedPayments(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedPaymentsInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, paymentID string, status domain.PaymentStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, paymentID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPaymentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPaymentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ReceiptRepository ---
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) SaveReceiptInTx(ctx context.Context, tx pgx.Tx, receipt domain.Receipt) error {
	args := m.Called(ctx, tx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) FindReceiptByPaymentID(ctx context.Context, paymentID string) (*domain.Receipt, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindReceiptByPaymentIDInTx(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Receipt, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindLatestReceiptNumberInTx(ctx context.Context, tx pgx.Tx, accountID string) (string, error) {
	args := m.Called(ctx, tx, accountID)
	return args.String(0), args.Error(1)
}

// --- Mock SequenceRepository ---
type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) GetCounter(ctx context.Context, accountID string, namespace domain.SequenceNamespace) (*domain.SequenceCounter, error) {
	args := m.Called(ctx, accountID, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SequenceCounter), args.Error(1)
}

func (m *MockSequenceRepository) AllocateNext(ctx context.Context, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error) {
	args := m.Called(ctx, accountID, namespace, candidate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepository) AllocateNextInTx(ctx context.Context, tx pgx.Tx, accountID string, namespace domain.SequenceNamespace, candidate int64) (int64, error) {
	args := m.Called(ctx, tx, accountID, namespace, candidate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepository) SetTemplate(ctx context.Context, accountID string, namespace domain.SequenceNamespace, template string) error {
	args := m.Called(ctx, accountID, namespace, template)
	return args.Error(0)
}

// --- Mock NumberingService ---
type MockNumberingService struct {
	mock.Mock
}

func (m *MockNumberingService) NextInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

// --- Mock ReceiptService ---
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) IssueReceiptInTx(ctx context.Context, tx pgx.Tx, accountID string, payment *domain.Payment) (*domain.Receipt, error) {
	args := m.Called(ctx, tx, accountID, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) GetReceiptByPaymentID(ctx context.Context, accountID string, paymentID string) (*domain.Receipt, error) {
	args := m.Called(ctx, accountID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}
