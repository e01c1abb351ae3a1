package mapping

import (
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/quillbooks/invoicing_app/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:   d.PaymentID,
		InvoiceID:   d.InvoiceID,
		Amount:      d.Amount,
		Method:      d.Method,
		Reference:   d.Reference,
		Status:      models.PaymentStatus(d.Status),
		RecordedAt:  d.RecordedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:   m.PaymentID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		Method:      m.Method,
		Reference:   m.Reference,
		Status:      domain.PaymentStatus(m.Status),
		RecordedAt:  m.RecordedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts a slice of model Payments to domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}

// ToModelReceipt converts a domain Receipt to a model Receipt
func ToModelReceipt(d domain.Receipt) models.Receipt {
	return models.Receipt{
		ReceiptID:         d.ReceiptID,
		PaymentID:         d.PaymentID,
		AccountID:         d.AccountID,
		ReceiptNumber:     d.ReceiptNumber,
		Amount:            d.Amount,
		IssuedAt:          d.IssuedAt,
		CorrectsReceiptID: d.CorrectsReceiptID,
	}
}

// ToDomainReceipt converts a model Receipt to a domain Receipt
func ToDomainReceipt(m models.Receipt) domain.Receipt {
	return domain.Receipt{
		ReceiptID:         m.ReceiptID,
		PaymentID:         m.PaymentID,
		AccountID:         m.AccountID,
		ReceiptNumber:     m.ReceiptNumber,
		Amount:            m.Amount,
		IssuedAt:          m.IssuedAt,
		CorrectsReceiptID: m.CorrectsReceiptID,
	}
}
