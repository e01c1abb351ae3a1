package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/quillbooks/invoicing_app/internal/middleware"
)

// paymentHandler handles HTTP requests related to payments and receipts.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	receiptService portssvc.ReceiptSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentService portssvc.PaymentSvcFacade, receiptService portssvc.ReceiptSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: paymentService,
		receiptService: receiptService,
	}
}

// recordPayment godoc
// @Summary Record a payment against an invoice
// @Description Validates the payment against the live balance, applies it and issues the receipt
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} dto.RecordPaymentResponse "The recorded payment with receipt and refreshed invoice"
// @Failure 400 {object} map[string]string "Invalid request format or values"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Duplicate reference or invoice not payable"
// @Failure 422 {object} map[string]interface{} "Payment exceeds balance due"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Router /accounts/{accountID}/invoices/{invoiceID}/payments [post]
// @Security BearerAuth
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for recordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.paymentService.RecordPayment(c.Request.Context(), accountID, invoiceID, req, accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// listPayments godoc
// @Summary List payments for an invoice
// @Description Retrieves all payments recorded against an invoice, oldest first
// @Tags payments
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.ListPaymentsResponse "The payments"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /accounts/{accountID}/invoices/{invoiceID}/payments [get]
// @Security BearerAuth
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	resp, err := h.paymentService.ListPayments(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// confirmPayment godoc
// @Summary Confirm a pending payment
// @Description Moves a PENDING payment to COMPLETED, re-checks the balance and issues the receipt
// @Tags payments
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.RecordPaymentResponse "The confirmed payment with receipt and refreshed invoice"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment is not pending"
// @Failure 422 {object} map[string]interface{} "Confirmation would overpay the invoice"
// @Failure 500 {object} map[string]string "Failed to confirm payment"
// @Router /accounts/{accountID}/payments/{paymentID}/confirm [post]
// @Security BearerAuth
func (h *paymentHandler) confirmPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	paymentID := c.Param("paymentID")

	resp, err := h.paymentService.ConfirmPayment(c.Request.Context(), accountID, paymentID, accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to confirm payment")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getReceipt godoc
// @Summary Get the receipt for a payment
// @Description Retrieves the receipt issued when the payment completed
// @Tags payments
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.ReceiptResponse "The receipt"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No receipt for this payment"
// @Failure 500 {object} map[string]string "Failed to retrieve receipt"
// @Router /accounts/{accountID}/payments/{paymentID}/receipt [get]
// @Security BearerAuth
func (h *paymentHandler) getReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	paymentID := c.Param("paymentID")

	receipt, err := h.receiptService.GetReceiptByPaymentID(c.Request.Context(), accountID, paymentID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve receipt")
		return
	}

	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

// registerPaymentRoutes registers payment specific routes under the
// authenticated account group.
func registerPaymentRoutes(group *gin.RouterGroup, h *paymentHandler) {
	payments := group.Group("/payments")
	{
		payments.POST("/:paymentID/confirm", h.confirmPayment)
		payments.GET("/:paymentID/receipt", h.getReceipt)
	}
}
