// Package ledger holds the session-scoped transaction list and derives
// double-entry journal lines from it.
package ledger

import "github.com/contanube/contanube/internal/extract"

// DefaultClientName substitutes for transactions whose client name could not
// be extracted.
const DefaultClientName = "Cliente General"

// Account labels used by the journal generator. These are descriptive
// labels, not chart-of-accounts codes.
const (
	AccountReceivable   = "cuenta por cobrar"
	AccountSalesRevenue = "venta de mercancía"
)

// Transaction is one parsed line of input. Transactions are immutable once
// stored; the only mutation is removal by ID.
type Transaction struct {
	ID             string                  `json:"id"`
	Date           string                  `json:"date"`
	Company        string                  `json:"company"`
	Description    string                  `json:"description"`
	Amount         float64                 `json:"amount"`
	DetectedType   extract.TransactionType `json:"detectedType"`
	OriginalText   string                  `json:"originalText"`
	ClientName     string                  `json:"clientName"`
	Concept        string                  `json:"concept,omitempty"`
	PaymentTerms   string                  `json:"paymentTerms,omitempty"`
	SpecificDetail string                  `json:"specificDetail,omitempty"`
}

// JournalEntry is a single debit or credit line derived from a transaction.
// Entries are recomputed from the transaction list on every read and are
// never persisted independently.
type JournalEntry struct {
	Date          string  `json:"date"`
	Account       string  `json:"account"`
	Auxiliary     string  `json:"auxiliary"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	TransactionID string  `json:"transactionId,omitempty"`
}
