package services

// ServiceContainer holds all service facades for dependency injection into
// the handler layer.
type ServiceContainer struct {
	Invoice   InvoiceSvcFacade
	Payment   PaymentSvcFacade
	Numbering NumberingSvcFacade
	Receipt   ReceiptSvcFacade
}
