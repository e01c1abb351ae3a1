package services

import "context"

// NumberingSvcFacade allocates human-readable document numbers. Each call
// consumes a sequence value: two sequential calls always return different
// numbers.
type NumberingSvcFacade interface {
	// NextInvoiceNumber allocates and formats the account's next invoice
	// number from its template.
	NextInvoiceNumber(ctx context.Context, accountID string) (string, error)
}
