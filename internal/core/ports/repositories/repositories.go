package repositories

// RepositoryProvider holds all repository implementations for dependency
// injection into the service container.
type RepositoryProvider struct {
	InvoiceRepo  InvoiceRepositoryWithTx
	PaymentRepo  PaymentRepositoryWithTx
	ReceiptRepo  ReceiptRepositoryFacade
	SequenceRepo SequenceRepositoryFacade
}
