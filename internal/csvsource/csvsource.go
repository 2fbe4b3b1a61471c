// Package csvsource loads transaction history from a CSV export.
//
// The expected layout has a header row with date, description, amount, and
// type columns, matched by name in any order. Rows that fail to parse are
// skipped with a warning rather than failing the whole load; a bank export
// with one mangled line should still produce a dashboard.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"spendy/internal/core"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("csv header missing required columns")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
}

// Source reads transactions from a CSV file on each Load.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

// Load implements service.TransactionSource.
func (s *Source) Load(ctx context.Context) ([]core.Transaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	transactions, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return transactions, nil
}

// Parse reads transactions from CSV data.
func Parse(ctx context.Context, r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var transactions []core.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed CSV row", "line", line, "error", err)
			continue
		}

		tx, err := parseRow(record, cols)
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid CSV row", "line", line, "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	slog.InfoContext(ctx, "CSV transactions loaded", "count", len(transactions))
	return transactions, nil
}

type columns struct {
	date        int
	description int
	amount      int
	txType      int // -1 when absent, sign decides
}

func columnIndexes(header []string) (columns, error) {
	cols := columns{date: -1, description: -1, amount: -1, txType: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "description":
			cols.description = i
		case "amount":
			cols.amount = i
		case "type":
			cols.txType = i
		}
	}
	if cols.date == -1 || cols.description == -1 || cols.amount == -1 {
		return cols, fmt.Errorf("%w: need date, description, amount", ErrMissingColumns)
	}
	return cols, nil
}

func parseRow(record []string, cols columns) (core.Transaction, error) {
	var tx core.Transaction

	max := cols.date
	if cols.description > max {
		max = cols.description
	}
	if cols.amount > max {
		max = cols.amount
	}
	if len(record) <= max {
		return tx, fmt.Errorf("row has %d fields, need at least %d", len(record), max+1)
	}

	date, err := parseDate(strings.TrimSpace(record[cols.date]))
	if err != nil {
		return tx, err
	}

	amount, err := core.ParseAmount(strings.TrimSpace(record[cols.amount]))
	if err != nil {
		return tx, err
	}

	tx = core.Transaction{
		Date:        date,
		Description: strings.TrimSpace(record[cols.description]),
		Amount:      amount,
	}
	if cols.txType >= 0 && cols.txType < len(record) {
		switch strings.ToLower(strings.TrimSpace(record[cols.txType])) {
		case "credit":
			tx.Type = core.Credit
		case "debit":
			tx.Type = core.Debit
		}
	}
	if tx.Type == "" {
		// No usable type column: the amount sign decides.
		if amount < 0 {
			tx.Type = core.Debit
		} else {
			tx.Type = core.Credit
		}
	}

	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
