package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	"github.com/saleslens-lab/saleslens/internal/core/storage"
)

// LoadSummary reports the outcome of a bulk file load.
type LoadSummary struct {
	Loaded     int
	Duplicates int
	Skipped    int
}

// Source report columns vary between exports ("Qty" vs "Quantity",
// "ship-state" vs "Ship State"), so headers are matched after
// normalization rather than by position.
var columnAliases = map[string]string{
	"order_id":   "order_id",
	"order":      "order_id",
	"status":     "status",
	"date":       "date",
	"category":   "category",
	"qty":        "quantity",
	"quantity":   "quantity",
	"amount":     "amount",
	"ship_state": "ship_state",
	"b2b":        "is_b2b",
	"is_b2b":     "is_b2b",
	"fulfilment": "fulfilment",
	"fulfillment": "fulfilment",
}

// Date layouts seen in source exports, tried in order.
var dateLayouts = []string{
	"01-02-06",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// LoadFile bulk-loads a ledger export (CSV or XLSX) into the store.
// Rows missing required ledger columns are skipped and tallied, never
// repaired: the loader preserves the source data as-is and leaves
// validity decisions to the analytics filter.
func LoadFile(ctx context.Context, store storage.LedgerStore, path string) (*LoadSummary, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("file %q contains no rows", path)
	}

	columnMap, err := mapHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("failed to map header of %q: %w", path, err)
	}

	summary := &LoadSummary{}
	now := time.Now().UTC()

	for i, row := range rows[1:] {
		rec, ok := rowToRecord(row, columnMap)
		if !ok {
			summary.Skipped++
			slog.Debug("Skipped malformed row", "row", i+2)
			continue
		}

		rec.LineID = uuid.NewString()
		rec.IngestedAt = now

		if err := store.SaveRecord(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				summary.Duplicates++
				continue
			}
			return summary, fmt.Errorf("failed to persist row %d: %w", i+2, err)
		}
		summary.Loaded++
	}

	slog.Info("File load complete",
		"path", path,
		"loaded", summary.Loaded,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped)

	return summary, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // source exports have ragged trailing columns

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// The ledger export lives on the first sheet.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// mapHeader resolves normalized header names to column indexes.
func mapHeader(header []string) (map[string]int, error) {
	columnMap := make(map[string]int)
	for i, cell := range header {
		name, ok := columnAliases[normalizeHeader(cell)]
		if !ok {
			continue
		}
		if _, dup := columnMap[name]; !dup {
			columnMap[name] = i
		}
	}

	for _, required := range []string{"order_id", "status", "date"} {
		if _, ok := columnMap[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columnMap, nil
}

func normalizeHeader(cell string) string {
	s := strings.TrimPrefix(cell, "\uFEFF") // strip UTF-8 BOM from the first header cell
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// rowToRecord builds a SalesRecord from one data row. Returns ok=false
// when a required field is missing or unparseable. Empty amount and
// quantity cells become nulls, not zeroes.
func rowToRecord(row []string, columnMap map[string]int) (*v1.SalesRecord, bool) {
	cell := func(name string) string {
		idx, ok := columnMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := &v1.SalesRecord{
		OrderID:    cell("order_id"),
		Status:     cell("status"),
		Category:   cell("category"),
		ShipState:  cell("ship_state"),
		Fulfilment: cell("fulfilment"),
	}
	if rec.OrderID == "" || rec.Status == "" {
		return nil, false
	}

	date, ok := parseDate(cell("date"))
	if !ok {
		return nil, false
	}
	rec.Date = date

	if raw := cell("quantity"); raw != "" {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		rec.Quantity = &qty
	}

	if raw := cell("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, false
		}
		rec.Amount = decimal.NewNullDecimal(amount)
	}

	rec.IsB2B = strings.EqualFold(cell("is_b2b"), "true")

	return rec, true
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
