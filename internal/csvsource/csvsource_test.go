package csvsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spendy/internal/core"
)

func TestParse(t *testing.T) {
	input := `date,description,amount,type
2025-05-01,ACME Payroll,2500.00,credit
2025-05-03,Pizza night,-42.50,debit
2025-05-04,Netflix subscription,-15.99,debit
`
	transactions, err := Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("parsed %d transactions, want 3", len(transactions))
	}

	first := transactions[0]
	if first.Description != "ACME Payroll" {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Amount != 2500 {
		t.Errorf("Amount = %v, want 2500", first.Amount)
	}
	if first.Type != core.Credit {
		t.Errorf("Type = %v, want credit", first.Type)
	}
	want := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", first.Date, want)
	}

	if transactions[1].Amount != -42.5 || transactions[1].Type != core.Debit {
		t.Errorf("second transaction = %+v", transactions[1])
	}
}

func TestParseColumnOrderIndependent(t *testing.T) {
	input := `amount,type,date,description
-10.00,debit,2025-05-01,Parking garage
`
	transactions, err := Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("parsed %d transactions, want 1", len(transactions))
	}
	if transactions[0].Description != "Parking garage" {
		t.Errorf("Description = %q", transactions[0].Description)
	}
}

func TestParseTypeDerivedFromSign(t *testing.T) {
	input := `date,description,amount
2025-05-01,Salary,2500.00
2025-05-02,Lidl groceries,-35.20
`
	transactions, err := Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if transactions[0].Type != core.Credit {
		t.Errorf("positive amount type = %v, want credit", transactions[0].Type)
	}
	if transactions[1].Type != core.Debit {
		t.Errorf("negative amount type = %v, want debit", transactions[1].Type)
	}
}

func TestParseSkipsBadRows(t *testing.T) {
	input := `date,description,amount,type
2025-05-01,Good row,-10.00,debit
not-a-date,Bad date,-10.00,debit
2025-05-03,,-10.00,debit
2025-05-04,Bad amount,abc,debit
2025-05-05,Another good row,-20.00,debit
`
	transactions, err := Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("parsed %d transactions, want 2 good rows", len(transactions))
	}
	if transactions[0].Description != "Good row" || transactions[1].Description != "Another good row" {
		t.Errorf("kept rows = %+v", transactions)
	}
}

func TestParseMissingColumns(t *testing.T) {
	input := `when,what,how_much
2025-05-01,Pizza,-10.00
`
	_, err := Parse(context.Background(), strings.NewReader(input))
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("Parse = %v, want ErrMissingColumns", err)
	}
}

func TestParseCommaDecimal(t *testing.T) {
	input := `date,description,amount,type
2025-05-01,Malta Post parcel,"-7,50",debit
`
	transactions, err := Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(transactions) != 1 || transactions[0].Amount != -7.5 {
		t.Errorf("transactions = %+v, want amount -7.5", transactions)
	}
}

func TestSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	data := `date,description,amount,type
2025-05-01,Pizza night,-42.50,debit
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source := NewSource(path)
	transactions, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("loaded %d transactions, want 1", len(transactions))
	}
}

func TestSourceLoadMissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := source.Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
