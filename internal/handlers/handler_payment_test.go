package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type PaymentHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockPaymentService *MockPaymentService
	mockReceiptService *MockReceiptService
}

func (suite *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockPaymentService = new(MockPaymentService)
	suite.mockReceiptService = new(MockReceiptService)

	cfg := &config.Config{
		JWTSecret:    testJWTSecret,
		IsProduction: true,
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Invoice:   new(MockInvoiceService),
		Payment:   suite.mockPaymentService,
		Numbering: new(MockNumberingService),
		Receipt:   suite.mockReceiptService,
	})
}

func (suite *PaymentHandlerTestSuite) doJSON(method, url string, body interface{}, accountID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite.T(), accountID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func paymentResponseFixture(accountID, invoiceID string) *dto.RecordPaymentResponse {
	now := time.Now().UTC().Truncate(time.Second)
	payment := dto.PaymentResponse{
		PaymentID:  uuid.NewString(),
		InvoiceID:  invoiceID,
		Amount:     decimal.RequireFromString("100.00"),
		Method:     "transfer",
		Reference:  "TXN-001",
		Status:     string(domain.PaymentStatusCompleted),
		RecordedAt: now,
	}
	receipt := dto.ReceiptResponse{
		ReceiptID:     uuid.NewString(),
		PaymentID:     payment.PaymentID,
		ReceiptNumber: "RCT-2026-08-0001",
		Amount:        payment.Amount,
		IssuedAt:      now,
	}
	invoice := dto.ToInvoiceResponse(sampleInvoice(accountID), decimal.RequireFromString("116.02"))
	invoice.Status = string(domain.InvoiceStatusPartiallyPaid)
	return &dto.RecordPaymentResponse{
		Payment: payment,
		Receipt: &receipt,
		Invoice: invoice,
	}
}

// --- Test Cases ---

func (suite *PaymentHandlerTestSuite) TestRecordPayment_Success() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()
	expected := paymentResponseFixture(accountID, invoiceID)

	reqBody := dto.RecordPaymentRequest{
		Amount:    decimal.RequireFromString("100.00"),
		Method:    "transfer",
		Reference: "TXN-001",
	}

	suite.mockPaymentService.On("RecordPayment",
		mock.Anything, accountID, invoiceID, mock.AnythingOfType("dto.RecordPaymentRequest"), accountID,
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/payments", accountID, invoiceID), reqBody, accountID)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RecordPaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.Payment.PaymentID, resp.Payment.PaymentID)
	suite.Require().NotNil(resp.Receipt)
	suite.Equal("RCT-2026-08-0001", resp.Receipt.ReceiptNumber)
	suite.Equal(string(domain.InvoiceStatusPartiallyPaid), resp.Invoice.Status)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestRecordPayment_InvalidMethod() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()

	reqBody := gin.H{
		"amount":    "50.00",
		"method":    "barter",
		"reference": "TXN-002",
	}

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/payments", accountID, invoiceID), reqBody, accountID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "RecordPayment")
}

func (suite *PaymentHandlerTestSuite) TestRecordPayment_OverpaymentReturns422() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()

	overpayment := &apperrors.OverpaymentError{
		InvoiceID:  invoiceID,
		Requested:  decimal.RequireFromString("500.00"),
		BalanceDue: decimal.RequireFromString("116.02"),
	}
	suite.mockPaymentService.On("RecordPayment",
		mock.Anything, accountID, invoiceID, mock.AnythingOfType("dto.RecordPaymentRequest"), accountID,
	).Return(nil, overpayment).Once()

	reqBody := dto.RecordPaymentRequest{
		Amount:    decimal.RequireFromString("500.00"),
		Method:    "cash",
		Reference: "TXN-003",
	}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/payments", accountID, invoiceID), reqBody, accountID)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("payment exceeds balance due", body["error"])
	suite.Equal(invoiceID, body["invoiceID"])
	suite.Equal("116.02", body["balanceDue"])
}

func (suite *PaymentHandlerTestSuite) TestRecordPayment_DuplicateReference() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()

	suite.mockPaymentService.On("RecordPayment",
		mock.Anything, accountID, invoiceID, mock.AnythingOfType("dto.RecordPaymentRequest"), accountID,
	).Return(nil, fmt.Errorf("%w: payment with reference TXN-004 already recorded", apperrors.ErrDuplicate)).Once()

	reqBody := dto.RecordPaymentRequest{
		Amount:    decimal.RequireFromString("10.00"),
		Method:    "cheque",
		Reference: "TXN-004",
	}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/payments", accountID, invoiceID), reqBody, accountID)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PaymentHandlerTestSuite) TestListPayments_Success() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()
	expected := &dto.ListPaymentsResponse{
		Payments: []dto.PaymentResponse{
			paymentResponseFixture(accountID, invoiceID).Payment,
		},
	}

	suite.mockPaymentService.On("ListPayments", mock.Anything, accountID, invoiceID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/invoices/%s/payments", accountID, invoiceID), nil, accountID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListPaymentsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Payments, 1)
}

func (suite *PaymentHandlerTestSuite) TestConfirmPayment_Success() {
	accountID := uuid.NewString()
	invoiceID := uuid.NewString()
	expected := paymentResponseFixture(accountID, invoiceID)
	paymentID := expected.Payment.PaymentID

	suite.mockPaymentService.On("ConfirmPayment", mock.Anything, accountID, paymentID, accountID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/payments/%s/confirm", accountID, paymentID), nil, accountID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RecordPaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(paymentID, resp.Payment.PaymentID)
	suite.Require().NotNil(resp.Receipt)
}

func (suite *PaymentHandlerTestSuite) TestConfirmPayment_NotPending() {
	accountID := uuid.NewString()
	paymentID := uuid.NewString()

	suite.mockPaymentService.On("ConfirmPayment", mock.Anything, accountID, paymentID, accountID).
		Return(nil, fmt.Errorf("%w: payment is not pending", apperrors.ErrConflict)).Once()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/payments/%s/confirm", accountID, paymentID), nil, accountID)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PaymentHandlerTestSuite) TestGetReceipt_Success() {
	accountID := uuid.NewString()
	paymentID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)
	receipt := &domain.Receipt{
		ReceiptID:     uuid.NewString(),
		PaymentID:     paymentID,
		AccountID:     accountID,
		ReceiptNumber: "RCT-2026-08-0007",
		Amount:        decimal.RequireFromString("42.00"),
		IssuedAt:      now,
	}

	suite.mockReceiptService.On("GetReceiptByPaymentID", mock.Anything, accountID, paymentID).
		Return(receipt, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/payments/%s/receipt", accountID, paymentID), nil, accountID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ReceiptResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("RCT-2026-08-0007", resp.ReceiptNumber)
}

func (suite *PaymentHandlerTestSuite) TestGetReceipt_NotFound() {
	accountID := uuid.NewString()
	paymentID := uuid.NewString()

	suite.mockReceiptService.On("GetReceiptByPaymentID", mock.Anything, accountID, paymentID).
		Return(nil, fmt.Errorf("%w: no receipt for payment %s", apperrors.ErrNotFound, paymentID)).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/payments/%s/receipt", accountID, paymentID), nil, accountID)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PaymentHandlerTestSuite) TestGetReceipt_OtherAccountsReceiptNotFound() {
	accountID := uuid.NewString()
	paymentID := uuid.NewString()

	suite.mockReceiptService.On("GetReceiptByPaymentID", mock.Anything, accountID, paymentID).
		Return(nil, fmt.Errorf("%w: no receipt issued for payment %s", apperrors.ErrNotFound, paymentID)).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/payments/%s/receipt", accountID, paymentID), nil, accountID)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockReceiptService.AssertCalled(suite.T(), "GetReceiptByPaymentID", mock.Anything, accountID, paymentID)
}

func TestPaymentHandler(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}
