// Package sheetsource loads transaction history from a Google Sheets
// spreadsheet. The sheet mirrors the CSV layout: a header row with date,
// description, amount, and type columns, matched by name.
package sheetsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendy/internal/core"
)

// ErrMissingColumns is returned when the header row lacks a required column.
var ErrMissingColumns = errors.New("sheet header missing required columns")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
}

type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets source from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_SHEET_NAME (default
// "Transactions").
func NewFromEnv(ctx context.Context) (*Source, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Source{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Load implements service.TransactionSource.
func (s *Source) Load(ctx context.Context) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:Z", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}

	transactions, err := parseRows(ctx, resp.Values)
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", s.sheetName, err)
	}
	return transactions, nil
}

type columns struct {
	date        int
	description int
	amount      int
	txType      int
}

func parseRows(ctx context.Context, values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, nil
	}

	cols := columns{date: -1, description: -1, amount: -1, txType: -1}
	for i, cell := range toStrings(values[0]) {
		switch strings.ToLower(strings.TrimSpace(cell)) {
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
		return nil, fmt.Errorf("%w: need date, description, amount", ErrMissingColumns)
	}

	var transactions []core.Transaction
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		tx, err := parseRow(row, cols)
		if err != nil {
			slog.WarnContext(ctx, "Skipping invalid sheet row", "row", i+1, "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	slog.InfoContext(ctx, "Sheet transactions loaded", "count", len(transactions))
	return transactions, nil
}

func parseRow(row []string, cols columns) (core.Transaction, error) {
	var tx core.Transaction

	date, err := parseDate(strings.TrimSpace(safeGet(row, cols.date)))
	if err != nil {
		return tx, err
	}
	amount, err := core.ParseAmount(strings.TrimSpace(safeGet(row, cols.amount)))
	if err != nil {
		return tx, err
	}

	tx = core.Transaction{
		Date:        date,
		Description: strings.TrimSpace(safeGet(row, cols.description)),
		Amount:      amount,
	}
	if cols.txType >= 0 {
		switch strings.ToLower(strings.TrimSpace(safeGet(row, cols.txType))) {
		case "credit":
			tx.Type = core.Credit
		case "debit":
			tx.Type = core.Debit
		}
	}
	if tx.Type == "" {
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

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
