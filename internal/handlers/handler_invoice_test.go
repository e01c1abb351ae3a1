package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/quillbooks/invoicing_app/internal/handlers"
	"github.com/quillbooks/invoicing_app/internal/platform/config"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, accountID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, accountID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) GetInvoice(ctx context.Context, accountID string, invoiceID string) (*domain.Invoice, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, invoiceID)
	if args.Get(0) == nil {
		return nil, decimal.Decimal{}, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, accountID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}
func (m *MockInvoiceService) MarkInvoiceSent(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, decimal.Decimal{}, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *MockInvoiceService) VoidInvoice(ctx context.Context, accountID string, invoiceID string, userID string) (*domain.Invoice, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, decimal.Decimal{}, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *MockInvoiceService) RecordPublicView(ctx context.Context, invoiceID string) (*domain.Invoice, decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, decimal.Decimal{}, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).(decimal.Decimal), args.Error(2)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, accountID string, invoiceID string, req dto.RecordPaymentRequest, userID string) (*dto.RecordPaymentResponse, error) {
	args := m.Called(ctx, accountID, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecordPaymentResponse), args.Error(1)
}
func (m *MockPaymentService) ConfirmPayment(ctx context.Context, accountID string, paymentID string, userID string) (*dto.RecordPaymentResponse, error) {
	args := m.Called(ctx, accountID, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecordPaymentResponse), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, accountID string, invoiceID string) (*dto.ListPaymentsResponse, error) {
	args := m.Called(ctx, accountID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPaymentsResponse), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock NumberingService ---
type MockNumberingService struct {
	mock.Mock
}

func (m *MockNumberingService) NextInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

var _ portssvc.NumberingSvcFacade = (*MockNumberingService)(nil)

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

var _ portssvc.ReceiptSvcFacade = (*MockReceiptService)(nil)

// generateTestToken creates a signed JWT whose subject is the account ID.
func generateTestToken(t *testing.T, accountID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    "invoicing-test",
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// sampleInvoice builds a SENT invoice for response assertions.
func sampleInvoice(accountID string) *domain.Invoice {
	now := time.Now().UTC().Truncate(time.Second)
	sentAt := now
	return &domain.Invoice{
		InvoiceID:     uuid.NewString(),
		AccountID:     accountID,
		InvoiceNumber: "INV-2026-08-0042",
		CustomerID:    uuid.NewString(),
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		CurrencyCode:  "USD",
		Discount:      decimal.Zero,
		TaxRate:       decimal.RequireFromString("0.08"),
		Subtotal:      decimal.RequireFromString("200.02"),
		TaxAmount:     decimal.RequireFromString("16.00"),
		ChargesTotal:  decimal.Zero,
		Total:         decimal.RequireFromString("216.02"),
		Status:        domain.InvoiceStatusSent,
		SentAt:        &sentAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     accountID,
			LastUpdatedAt: now,
			LastUpdatedBy: accountID,
		},
	}
}

// --- Test Suite ---
type InvoiceHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockInvoiceService   *MockInvoiceService
	mockPaymentService   *MockPaymentService
	mockNumberingService *MockNumberingService
	mockReceiptService   *MockReceiptService
}

func (suite *InvoiceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockInvoiceService = new(MockInvoiceService)
	suite.mockPaymentService = new(MockPaymentService)
	suite.mockNumberingService = new(MockNumberingService)
	suite.mockReceiptService = new(MockReceiptService)

	// IsProduction skips the swagger group; everything else is the real wiring.
	cfg := &config.Config{
		JWTSecret:    testJWTSecret,
		IsProduction: true,
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Invoice:   suite.mockInvoiceService,
		Payment:   suite.mockPaymentService,
		Numbering: suite.mockNumberingService,
		Receipt:   suite.mockReceiptService,
	})
}

func (suite *InvoiceHandlerTestSuite) doJSON(method, url string, body interface{}, accountID *string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accountID != nil {
		req.Header.Set("Authorization", "Bearer "+generateTestToken(suite.T(), *accountID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_Success() {
	accountID := uuid.NewString()
	expected := sampleInvoice(accountID)

	reqBody := dto.CreateInvoiceRequest{
		CustomerID:   expected.CustomerID,
		IssueDate:    expected.IssueDate,
		DueDate:      expected.DueDate,
		CurrencyCode: "USD",
		LineItems: []dto.CreateLineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitRate: decimal.RequireFromString("100.01")},
		},
		TaxRate: decimal.RequireFromString("0.08"),
	}

	suite.mockInvoiceService.On("CreateInvoice",
		mock.Anything, accountID, mock.AnythingOfType("dto.CreateInvoiceRequest"), accountID,
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices", accountID), reqBody, &accountID)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.InvoiceID, resp.InvoiceID)
	suite.Equal("INV-2026-08-0042", resp.InvoiceNumber)
	suite.True(resp.Total.Equal(decimal.RequireFromString("216.02")))
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_MissingLineItems() {
	accountID := uuid.NewString()
	reqBody := gin.H{
		"customerID":   uuid.NewString(),
		"issueDate":    time.Now().UTC(),
		"dueDate":      time.Now().UTC().AddDate(0, 1, 0),
		"currencyCode": "USD",
	}

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices", accountID), reqBody, &accountID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "CreateInvoice")
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_Unauthorized() {
	accountID := uuid.NewString()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices", accountID), gin.H{}, nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "CreateInvoice")
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_Success() {
	accountID := uuid.NewString()
	expected := sampleInvoice(accountID)
	balance := decimal.RequireFromString("116.02")

	suite.mockInvoiceService.On("GetInvoice", mock.Anything, accountID, expected.InvoiceID).
		Return(expected, balance, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s", accountID, expected.InvoiceID), nil, &accountID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.BalanceDue.Equal(balance))
	suite.Equal(string(domain.InvoiceStatusSent), resp.Status)
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_NotFound() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()

	suite.mockInvoiceService.On("GetInvoice", mock.Anything, accountID, invoiceID).
		Return(nil, decimal.Decimal{}, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s", accountID, invoiceID), nil, &accountID)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_TokenAccountMismatch() {
	pathAccountID := uuid.NewString()
	tokenAccountID := uuid.NewString()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s", pathAccountID, uuid.NewString()), nil, &tokenAccountID)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "GetInvoice")
}

func (suite *InvoiceHandlerTestSuite) TestListInvoices_PassesQueryParams() {
	accountID := uuid.NewString()
	status := "OVERDUE"

	suite.mockInvoiceService.On("ListInvoices", mock.Anything, accountID,
		mock.MatchedBy(func(p dto.ListInvoicesParams) bool {
			return p.Limit == 5 && p.Status != nil && *p.Status == status
		}),
	).Return(&dto.ListInvoicesResponse{Invoices: []dto.InvoiceResponse{}}, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices?limit=5&status=%s", accountID, status), nil, &accountID)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestNextInvoiceNumber_Success() {
	accountID := uuid.NewString()

	suite.mockNumberingService.On("NextInvoiceNumber", mock.Anything, accountID).
		Return("INV-2026-08-0043", nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices/next-number", accountID), nil, &accountID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.NextInvoiceNumberResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("INV-2026-08-0043", resp.InvoiceNumber)
}

func (suite *InvoiceHandlerTestSuite) TestVoidInvoice_PaidConflict() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()

	suite.mockInvoiceService.On("VoidInvoice", mock.Anything, accountID, invoiceID, accountID).
		Return(nil, decimal.Decimal{}, fmt.Errorf("%w: a paid invoice cannot be voided", apperrors.ErrConflict)).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/void", accountID, invoiceID), nil, &accountID)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestSendInvoice_ReportsLiveBalance() {
	accountID := uuid.NewString()
	expected := sampleInvoice(accountID)
	expected.Status = domain.InvoiceStatusPartiallyPaid

	suite.mockInvoiceService.On("MarkInvoiceSent", mock.Anything, accountID, expected.InvoiceID, accountID).
		Return(expected, decimal.RequireFromString("116.02"), nil).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/send", accountID, expected.InvoiceID), nil, &accountID)

	suite.Equal(http.StatusOK, w.Code)
	var body map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("116.02", body["balanceDue"])
	suite.Equal(string(domain.InvoiceStatusPartiallyPaid), body["status"])
}

func (suite *InvoiceHandlerTestSuite) TestGetPublicInvoice_NoAuthRequired() {
	accountID := uuid.NewString()
	expected := sampleInvoice(accountID)
	viewedAt := time.Now().UTC()
	expected.ViewedAt = &viewedAt
	expected.Status = domain.InvoiceStatusViewed

	suite.mockInvoiceService.On("RecordPublicView", mock.Anything, expected.InvoiceID).
		Return(expected, expected.Total, nil).Once()

	w := suite.doJSON(http.MethodGet, "/public/invoices/"+expected.InvoiceID, nil, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(domain.InvoiceStatusViewed), resp.Status)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func TestInvoiceHandler(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerTestSuite))
}
