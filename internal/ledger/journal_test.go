package ledger_test

import (
	"reflect"
	"testing"

	"github.com/contanube/contanube/internal/extract"
	"github.com/contanube/contanube/internal/ledger"
	_ "github.com/contanube/contanube/testing"
)

func TestGenerateJournalIncome(t *testing.T) {
	txns := []ledger.Transaction{{
		ID:           "txn-1",
		Date:         "2025-05-01",
		Amount:       1230000,
		DetectedType: extract.TypeIncome,
		ClientName:   "Frank Muebles",
	}}

	entries := ledger.GenerateJournal(txns)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	debit := entries[0]
	if debit.Account != ledger.AccountReceivable {
		t.Fatalf("debit account = %q", debit.Account)
	}
	if debit.Debit != 1230000 || debit.Credit != 0 {
		t.Fatalf("debit entry %+v", debit)
	}
	if debit.Auxiliary != "Frank Muebles 1,230,000.00" {
		t.Fatalf("debit auxiliary = %q", debit.Auxiliary)
	}

	credit := entries[1]
	if credit.Account != ledger.AccountSalesRevenue {
		t.Fatalf("credit account = %q", credit.Account)
	}
	if credit.Debit != 0 || credit.Credit != 1230000 {
		t.Fatalf("credit entry %+v", credit)
	}
	if credit.Auxiliary != "para registra venta de mercancía a frank muebles" {
		t.Fatalf("credit auxiliary = %q", credit.Auxiliary)
	}
}

func TestGenerateJournalSkipsNonIncome(t *testing.T) {
	txns := []ledger.Transaction{
		{ID: "txn-1", Amount: 300000, DetectedType: extract.TypeCollection, ClientName: "Corripio"},
		{ID: "txn-2", Amount: 5000, DetectedType: extract.TypeDiscount, ClientName: "Pérez"},
	}
	if entries := ledger.GenerateJournal(txns); len(entries) != 0 {
		t.Fatalf("expected no entries for collection/discount, got %d", len(entries))
	}
}

func TestGenerateJournalPlaceholderClient(t *testing.T) {
	txns := []ledger.Transaction{{
		ID:           "txn-1",
		Date:         "2025-05-01",
		Amount:       45000,
		DetectedType: extract.TypeIncome,
	}}
	entries := ledger.GenerateJournal(txns)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Auxiliary != "Cliente General 45,000.00" {
		t.Fatalf("auxiliary = %q", entries[0].Auxiliary)
	}
}

func TestGenerateJournalDeterministic(t *testing.T) {
	txns := []ledger.Transaction{
		{ID: "txn-1", Date: "2025-05-01", Amount: 1230000, DetectedType: extract.TypeIncome, ClientName: "Frank Muebles"},
		{ID: "txn-2", Date: "2025-05-03", Amount: 300000, DetectedType: extract.TypeCollection, ClientName: "Corripio"},
		{ID: "txn-3", Date: "2025-05-04", Amount: 8000, DetectedType: extract.TypeIncome, ClientName: "Casa Pérez"},
	}

	first := ledger.GenerateJournal(txns)
	second := ledger.GenerateJournal(txns)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("journal generation is not deterministic:\n%+v\n%+v", first, second)
	}
}
