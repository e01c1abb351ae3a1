package dto

import (
	"time"

	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest applies a payment against an invoice. Pending is the
// caller's policy escape hatch (cheques, large transfers that clear later);
// the ledger itself never decides to hold a payment.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash cheque transfer card other"`
	Reference string          `json:"reference" binding:"required"`
	Pending   bool            `json:"pending"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID  string          `json:"paymentID"`
	InvoiceID  string          `json:"invoiceID"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	Status     string          `json:"status"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// ReceiptResponse defines the data returned for a receipt.
type ReceiptResponse struct {
	ReceiptID     string          `json:"receiptID"`
	PaymentID     string          `json:"paymentID"`
	ReceiptNumber string          `json:"receiptNumber"`
	Amount        decimal.Decimal `json:"amount"`
	IssuedAt      time.Time       `json:"issuedAt"`
}

// RecordPaymentResponse is the combined outcome of a payment application: the
// created payment, the receipt when the payment completed immediately, and the
// invoice with its refreshed balance and status.
type RecordPaymentResponse struct {
	Payment PaymentResponse  `json:"payment"`
	Receipt *ReceiptResponse `json:"receipt,omitempty"`
	Invoice InvoiceResponse  `json:"invoice"`
}

// ListPaymentsResponse lists the payments recorded against one invoice.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// ToPaymentResponse converts a domain.Payment to a PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:  p.PaymentID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		Status:     string(p.Status),
		RecordedAt: p.RecordedAt,
	}
}

// ToPaymentResponses converts a slice of domain.Payment to DTOs.
func ToPaymentResponses(ps []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(ps))
	for i := range ps {
		responses[i] = ToPaymentResponse(&ps[i])
	}
	return responses
}

// ToReceiptResponse converts a domain.Receipt to a ReceiptResponse DTO.
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:     r.ReceiptID,
		PaymentID:     r.PaymentID,
		ReceiptNumber: r.ReceiptNumber,
		Amount:        r.Amount,
		IssuedAt:      r.IssuedAt,
	}
}
