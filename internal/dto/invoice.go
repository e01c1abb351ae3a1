package dto

import (
	"time"

	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest is one billable row in a createInvoice call.
type CreateLineItemRequest struct {
	Description string           `json:"description" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitRate    decimal.Decimal  `json:"unitRate" binding:"required"`
	Unit        string           `json:"unit"`
	PerItemTax  *decimal.Decimal `json:"perItemTax,omitempty"`
}

// CreateChargeRequest is one named flat charge in a createInvoice call.
type CreateChargeRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreateInvoiceRequest is the draft an invoice is created from. Totals and the
// invoice number are always computed server-side; the request never carries
// them.
type CreateInvoiceRequest struct {
	CustomerID        string                  `json:"customerID" binding:"required"`
	IssueDate         time.Time               `json:"issueDate" binding:"required"`
	DueDate           time.Time               `json:"dueDate" binding:"required"`
	CurrencyCode      string                  `json:"currencyCode" binding:"required,uppercase,len=3"`
	LineItems         []CreateLineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
	Discount          decimal.Decimal         `json:"discount"`
	AdditionalCharges []CreateChargeRequest   `json:"additionalCharges" binding:"omitempty,dive"`
	TaxRate           decimal.Decimal         `json:"taxRate"`
	Notes             string                  `json:"notes"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID  string           `json:"lineItemID"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitRate    decimal.Decimal  `json:"unitRate"`
	Unit        string           `json:"unit,omitempty"`
	PerItemTax  *decimal.Decimal `json:"perItemTax,omitempty"`
	Total       decimal.Decimal  `json:"total"`
}

// ChargeResponse defines the data returned for an additional charge.
type ChargeResponse struct {
	ChargeID string          `json:"chargeID"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID         string             `json:"invoiceID"`
	AccountID         string             `json:"accountID"`
	InvoiceNumber     string             `json:"invoiceNumber"`
	CustomerID        string             `json:"customerID"`
	IssueDate         time.Time          `json:"issueDate"`
	DueDate           time.Time          `json:"dueDate"`
	CurrencyCode      string             `json:"currencyCode"`
	LineItems         []LineItemResponse `json:"lineItems,omitempty"`
	Discount          decimal.Decimal    `json:"discount"`
	AdditionalCharges []ChargeResponse   `json:"additionalCharges,omitempty"`
	TaxRate           decimal.Decimal    `json:"taxRate"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxAmount         decimal.Decimal    `json:"taxAmount"`
	ChargesTotal      decimal.Decimal    `json:"chargesTotal"`
	Total             decimal.Decimal    `json:"total"`
	BalanceDue        decimal.Decimal    `json:"balanceDue"`
	Status            string             `json:"status"`
	SentAt            *time.Time         `json:"sentAt,omitempty"`
	ViewedAt          *time.Time         `json:"viewedAt,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// ListInvoicesParams holds query parameters for listing invoices.
type ListInvoicesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
}

// ListInvoicesResponse is the paginated invoice listing.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// NextInvoiceNumberResponse carries a freshly allocated invoice number.
type NextInvoiceNumberResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
}

// ToInvoiceResponse converts a domain.Invoice (plus its balance due) to an
// InvoiceResponse DTO.
func ToInvoiceResponse(inv *domain.Invoice, balanceDue decimal.Decimal) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		AccountID:     inv.AccountID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		CurrencyCode:  inv.CurrencyCode,
		Discount:      inv.Discount,
		TaxRate:       inv.TaxRate,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		ChargesTotal:  inv.ChargesTotal,
		Total:         inv.Total,
		BalanceDue:    balanceDue,
		Status:        string(inv.Status),
		SentAt:        inv.SentAt,
		ViewedAt:      inv.ViewedAt,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
	}
	if len(inv.LineItems) > 0 {
		resp.LineItems = make([]LineItemResponse, len(inv.LineItems))
		for i, item := range inv.LineItems {
			resp.LineItems[i] = LineItemResponse{
				LineItemID:  item.LineItemID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitRate:    item.UnitRate,
				Unit:        item.Unit,
				PerItemTax:  item.PerItemTax,
				Total:       item.Total,
			}
		}
	}
	if len(inv.AdditionalCharges) > 0 {
		resp.AdditionalCharges = make([]ChargeResponse, len(inv.AdditionalCharges))
		for i, charge := range inv.AdditionalCharges {
			resp.AdditionalCharges[i] = ChargeResponse{
				ChargeID: charge.ChargeID,
				Name:     charge.Name,
				Amount:   charge.Amount,
			}
		}
	}
	return resp
}
