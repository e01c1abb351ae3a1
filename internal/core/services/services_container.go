package services

import (
	portsrepo "github.com/quillbooks/invoicing_app/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
)

// NewServiceContainer wires the service layer from the repository provider.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	numberingSvc := NewNumberingService(repos.SequenceRepo, repos.InvoiceRepo)
	receiptSvc := NewReceiptService(repos.ReceiptRepo, repos.SequenceRepo)
	invoiceSvc := NewInvoiceService(repos.InvoiceRepo, repos.PaymentRepo, numberingSvc)
	paymentSvc := NewPaymentService(repos.InvoiceRepo, repos.PaymentRepo, receiptSvc)

	return &portssvc.ServiceContainer{
		Invoice:   invoiceSvc,
		Payment:   paymentSvc,
		Numbering: numberingSvc,
		Receipt:   receiptSvc,
	}
}
