package domain

import "time"

// SequenceNamespace separates the counters an account owns. Invoice and
// receipt numbers advance independently.
type SequenceNamespace string

const (
	SequenceNamespaceInvoice SequenceNamespace = "INVOICE"
	SequenceNamespaceReceipt SequenceNamespace = "RECEIPT"
)

// DefaultInvoiceNumberTemplate is used when an account has not configured its
// own format. Placeholders: {YYYY} year, {MM} month, {SEQ} zero-padded counter.
const DefaultInvoiceNumberTemplate = "INV-{YYYY}-{MM}-{SEQ}"

// DefaultReceiptNumberTemplate mirrors the invoice default for receipts.
const DefaultReceiptNumberTemplate = "RCT-{YYYY}-{MM}-{SEQ}"

// SequenceCounter is the per-account persisted counter state. It is advanced
// only through the sequencer's atomic increment and is cross-checked against
// the most recently issued number before use.
type SequenceCounter struct {
	AccountID     string            `json:"accountID"`
	Namespace     SequenceNamespace `json:"namespace"`
	LastValue     int64             `json:"lastValue"`
	Template      string            `json:"template"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}
