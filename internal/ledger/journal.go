package ledger

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/contanube/contanube/internal/extract"
)

// auxPrinter renders amounts the way the on-screen journal shows them,
// with es-DO grouping and two decimal places.
var auxPrinter = message.NewPrinter(language.MustParse("es-DO"))

// GenerateJournal derives journal lines from the transaction list. It is pure
// and deterministic: the same list always yields the same sequence.
//
// Only income transactions produce entries: an accounts-receivable debit
// followed by a sales-revenue credit for the full amount. Collection and
// discount transactions yield no lines; their debit/credit rules are not
// defined yet.
func GenerateJournal(txns []Transaction) []JournalEntry {
	var entries []JournalEntry
	for _, txn := range txns {
		clientName := txn.ClientName
		if clientName == "" {
			clientName = DefaultClientName
		}
		switch txn.DetectedType {
		case extract.TypeIncome:
			entries = append(entries, JournalEntry{
				Date:          txn.Date,
				Account:       AccountReceivable,
				Auxiliary:     fmt.Sprintf("%s %s", clientName, formatDisplayAmount(txn.Amount)),
				Debit:         txn.Amount,
				Credit:        0,
				TransactionID: txn.ID,
			}, JournalEntry{
				Date:          txn.Date,
				Account:       AccountSalesRevenue,
				Auxiliary:     fmt.Sprintf("para registra venta de mercancía a %s", strings.ToLower(clientName)),
				Debit:         0,
				Credit:        txn.Amount,
				TransactionID: txn.ID,
			})
		}
	}
	return entries
}

func formatDisplayAmount(v float64) string {
	return auxPrinter.Sprint(number.Decimal(v, number.MinFractionDigits(2)))
}
