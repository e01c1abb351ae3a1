package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/dto"
	"github.com/quillbooks/invoicing_app/internal/middleware"
)

// invoiceHandler handles HTTP requests related to invoices.
type invoiceHandler struct {
	invoiceService   portssvc.InvoiceSvcFacade
	numberingService portssvc.NumberingSvcFacade
}

// newInvoiceHandler creates a new invoiceHandler.
func newInvoiceHandler(invoiceService portssvc.InvoiceSvcFacade, numberingService portssvc.NumberingSvcFacade) *invoiceHandler {
	return &invoiceHandler{
		invoiceService:   invoiceService,
		numberingService: numberingService,
	}
}

// createInvoice godoc
// @Summary Create a new invoice
// @Description Creates a draft invoice; totals and the invoice number are computed server-side
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice draft"
// @Success 201 {object} dto.InvoiceResponse "The created invoice"
// @Failure 400 {object} map[string]string "Invalid request format or values"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Invoice number conflict"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Router /accounts/{accountID}/invoices [post]
// @Security BearerAuth
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), accountID, req, accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create invoice")
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice, invoice.Total))
}

// listInvoices godoc
// @Summary List invoices
// @Description Retrieves a paginated list of the account's invoices, optionally filtered by status
// @Tags invoices
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Maximum number of invoices to return (default 20, max 100)"
// @Param   nextToken query string false "Token for the next page"
// @Param   status query string false "Filter by invoice status"
// @Success 200 {object} dto.ListInvoicesResponse "The invoices"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Router /accounts/{accountID}/invoices [get]
// @Security BearerAuth
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}

	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listInvoices", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), accountID, params)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list invoices")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getInvoice godoc
// @Summary Get an invoice
// @Description Retrieves an invoice with its line items, charges, live status and balance due
// @Tags invoices
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse "The invoice"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Router /accounts/{accountID}/invoices/{invoiceID} [get]
// @Security BearerAuth
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	invoice, balanceDue, err := h.invoiceService.GetInvoice(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, balanceDue))
}

// nextInvoiceNumber godoc
// @Summary Preview and reserve the next invoice number
// @Description Allocates the account's next invoice number; allocated numbers are never reused
// @Tags invoices
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.NextInvoiceNumberResponse "The allocated number"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to allocate invoice number"
// @Router /accounts/{accountID}/invoices/next-number [get]
// @Security BearerAuth
func (h *invoiceHandler) nextInvoiceNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}

	number, err := h.numberingService.NextInvoiceNumber(c.Request.Context(), accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to allocate invoice number")
		return
	}

	c.JSON(http.StatusOK, dto.NextInvoiceNumberResponse{InvoiceNumber: number})
}

// sendInvoice godoc
// @Summary Mark an invoice as sent
// @Description Records the explicit send action; repeating it has no effect
// @Tags invoices
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse "The updated invoice"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is void"
// @Failure 500 {object} map[string]string "Failed to mark invoice sent"
// @Router /accounts/{accountID}/invoices/{invoiceID}/send [post]
// @Security BearerAuth
func (h *invoiceHandler) sendInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	invoice, balanceDue, err := h.invoiceService.MarkInvoiceSent(c.Request.Context(), accountID, invoiceID, accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to mark invoice sent")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, balanceDue))
}

// voidInvoice godoc
// @Summary Void an invoice
// @Description Moves the invoice to the terminal VOID state; paid invoices cannot be voided
// @Tags invoices
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse "The voided invoice"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is paid"
// @Failure 500 {object} map[string]string "Failed to void invoice"
// @Router /accounts/{accountID}/invoices/{invoiceID}/void [post]
// @Security BearerAuth
func (h *invoiceHandler) voidInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := resolveAccountID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceID")

	invoice, balanceDue, err := h.invoiceService.VoidInvoice(c.Request.Context(), accountID, invoiceID, accountID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to void invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, balanceDue))
}

// getPublicInvoice godoc
// @Summary Serve an invoice through its public link
// @Description Returns the invoice for customer viewing and records the first view
// @Tags public
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse "The invoice"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Router /public/invoices/{invoiceID} [get]
func (h *invoiceHandler) getPublicInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	invoice, balanceDue, err := h.invoiceService.RecordPublicView(c.Request.Context(), invoiceID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, balanceDue))
}

// registerInvoiceRoutes registers invoice specific routes under the
// authenticated account group.
func registerInvoiceRoutes(group *gin.RouterGroup, h *invoiceHandler, p *paymentHandler) {
	invoices := group.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/next-number", h.nextInvoiceNumber)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.POST("/:invoiceID/send", h.sendInvoice)
		invoices.POST("/:invoiceID/void", h.voidInvoice)
		invoices.POST("/:invoiceID/payments", p.recordPayment)
		invoices.GET("/:invoiceID/payments", p.listPayments)
	}
}
