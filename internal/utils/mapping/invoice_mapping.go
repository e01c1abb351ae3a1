package mapping

import (
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/quillbooks/invoicing_app/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice. Line items and
// charges are mapped separately since they live in their own tables.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:     d.InvoiceID,
		AccountID:     d.AccountID,
		InvoiceNumber: d.InvoiceNumber,
		CustomerID:    d.CustomerID,
		IssueDate:     d.IssueDate,
		DueDate:       d.DueDate,
		CurrencyCode:  d.CurrencyCode,
		Discount:      d.Discount,
		TaxRate:       d.TaxRate,
		Subtotal:      d.Subtotal,
		TaxAmount:     d.TaxAmount,
		ChargesTotal:  d.ChargesTotal,
		Total:         d.Total,
		Status:        models.InvoiceStatus(d.Status),
		SentAt:        d.SentAt,
		ViewedAt:      d.ViewedAt,
		VoidedAt:      d.VoidedAt,
		Notes:         d.Notes,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     m.InvoiceID,
		AccountID:     m.AccountID,
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		CurrencyCode:  m.CurrencyCode,
		Discount:      m.Discount,
		TaxRate:       m.TaxRate,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		ChargesTotal:  m.ChargesTotal,
		Total:         m.Total,
		Status:        domain.InvoiceStatus(m.Status),
		SentAt:        m.SentAt,
		ViewedAt:      m.ViewedAt,
		VoidedAt:      m.VoidedAt,
		Notes:         m.Notes,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model LineItem
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		LineItemID:  d.LineItemID,
		InvoiceID:   d.InvoiceID,
		Description: d.Description,
		Quantity:    d.Quantity,
		UnitRate:    d.UnitRate,
		Unit:        d.Unit,
		PerItemTax:  d.PerItemTax,
		Total:       d.Total,
		Position:    d.Position,
	}
}

// ToDomainLineItem converts a model LineItem to a domain LineItem
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:  m.LineItemID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitRate:    m.UnitRate,
		Unit:        m.Unit,
		PerItemTax:  m.PerItemTax,
		Total:       m.Total,
		Position:    m.Position,
	}
}

// ToDomainLineItemSlice converts a slice of model LineItems to domain LineItems
func ToDomainLineItemSlice(ms []models.LineItem) []domain.LineItem {
	ds := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}

// ToModelCharge converts a domain AdditionalCharge to a model AdditionalCharge
func ToModelCharge(d domain.AdditionalCharge) models.AdditionalCharge {
	return models.AdditionalCharge{
		ChargeID:  d.ChargeID,
		InvoiceID: d.InvoiceID,
		Name:      d.Name,
		Amount:    d.Amount,
		Position:  d.Position,
	}
}

// ToDomainCharge converts a model AdditionalCharge to a domain AdditionalCharge
func ToDomainCharge(m models.AdditionalCharge) domain.AdditionalCharge {
	return domain.AdditionalCharge{
		ChargeID:  m.ChargeID,
		InvoiceID: m.InvoiceID,
		Name:      m.Name,
		Amount:    m.Amount,
		Position:  m.Position,
	}
}

// ToDomainChargeSlice converts a slice of model charges to domain charges
func ToDomainChargeSlice(ms []models.AdditionalCharge) []domain.AdditionalCharge {
	ds := make([]domain.AdditionalCharge, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCharge(m)
	}
	return ds
}
