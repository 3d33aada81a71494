package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteJournalCSV emits the general journal as CSV. Zero debit and credit
// values render as empty cells; nonzero values are written raw, without the
// locale formatting applied on screen.
func WriteJournalCSV(w io.Writer, entries []JournalEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Fecha", "Nombre de la Cuenta", "Auxiliar", "Débito", "Crédito"}); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.Write([]string{
			entry.Date,
			entry.Account,
			entry.Auxiliary,
			formatCell(entry.Debit),
			formatCell(entry.Credit),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Filename derives the download filename from the batch company label,
// falling back to a generic one.
func Filename(company string) string {
	company = strings.TrimSpace(company)
	if company == "" {
		company = "empresa"
	}
	return fmt.Sprintf("diario-general-%s.csv", company)
}

func formatCell(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
