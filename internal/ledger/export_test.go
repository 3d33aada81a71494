package ledger_test

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/contanube/contanube/internal/ledger"
	_ "github.com/contanube/contanube/testing"
)

func TestWriteJournalCSV(t *testing.T) {
	entries := []ledger.JournalEntry{
		{
			Date:      "2025-05-01",
			Account:   ledger.AccountReceivable,
			Auxiliary: "Frank Muebles 1,230,000.00",
			Debit:     1230000,
		},
		{
			Date:      "2025-05-01",
			Account:   ledger.AccountSalesRevenue,
			Auxiliary: "para registra venta de mercancía a frank muebles",
			Credit:    1230000,
		},
	}

	var buf bytes.Buffer
	if err := ledger.WriteJournalCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	header := []string{"Fecha", "Nombre de la Cuenta", "Auxiliar", "Débito", "Crédito"}
	if !reflect.DeepEqual(records[0], header) {
		t.Fatalf("header = %v", records[0])
	}

	// Debit row: raw numeric debit, empty credit cell.
	if records[1][1] != ledger.AccountReceivable || records[1][3] != "1230000" || records[1][4] != "" {
		t.Fatalf("debit row = %v", records[1])
	}
	// Credit row: empty debit cell, raw numeric credit.
	if records[2][1] != ledger.AccountSalesRevenue || records[2][3] != "" || records[2][4] != "1230000" {
		t.Fatalf("credit row = %v", records[2])
	}
}

func TestWriteJournalCSVDecimalAmount(t *testing.T) {
	entries := []ledger.JournalEntry{{
		Date:    "2025-05-02",
		Account: ledger.AccountReceivable,
		Debit:   1500.75,
	}}

	var buf bytes.Buffer
	if err := ledger.WriteJournalCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if records[1][3] != "1500.75" {
		t.Fatalf("debit cell = %q, want 1500.75", records[1][3])
	}
}

func TestFilename(t *testing.T) {
	if got := ledger.Filename("Demo SRL"); got != "diario-general-Demo SRL.csv" {
		t.Fatalf("filename = %q", got)
	}
	if got := ledger.Filename(""); got != "diario-general-empresa.csv" {
		t.Fatalf("fallback filename = %q", got)
	}
}
