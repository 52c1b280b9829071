package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"retailcli/internal/errors"
)

// Canonical column names after header normalization. Row ID, Customer Name,
// Country, Postal Code and Product ID are optional; every other column must
// be present for a load to succeed.
const (
	ColRowID        = "row id"
	ColOrderID      = "order id"
	ColOrderDate    = "order date"
	ColShipDate     = "ship date"
	ColShipMode     = "ship mode"
	ColCustomerID   = "customer id"
	ColCustomerName = "customer name"
	ColSegment      = "segment"
	ColCountry      = "country"
	ColCity         = "city"
	ColState        = "state"
	ColPostalCode   = "postal code"
	ColRegion       = "region"
	ColProductID    = "product id"
	ColCategory     = "category"
	ColSubCategory  = "sub category"
	ColProductName  = "product name"
	ColSales        = "sales"
	ColQuantity     = "quantity"
	ColDiscount     = "discount"
	ColProfit       = "profit"
)

// RequiredColumns lists every column a sales extract must carry. Optional
// columns are carried through when present and default to zero values or
// "Unknown" when absent.
var RequiredColumns = []string{
	ColOrderID, ColOrderDate, ColShipDate, ColShipMode,
	ColCustomerID, ColSegment, ColRegion, ColState, ColCity,
	ColCategory, ColSubCategory, ColProductName,
	ColSales, ColQuantity, ColDiscount, ColProfit,
}

// LoaderConfig controls how raw extracts are read
type LoaderConfig struct {
	// Comma is the CSV field delimiter
	Comma rune
	// Lenient tolerates ragged rows and lazy quoting instead of failing the load
	Lenient bool
}

// DefaultLoaderConfig returns the loader defaults for a comma-separated extract
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Comma:   ',',
		Lenient: true,
	}
}

// RawTable holds an extract as raw strings: header resolution happens here,
// all type casting is the cleaner's job.
type RawTable struct {
	Source  string
	Columns []string       // normalized header names in file order
	Index   map[string]int // normalized name -> column position
	Rows    [][]string
}

// Has reports whether the table carries the given column
func (t *RawTable) Has(column string) bool {
	_, ok := t.Index[column]
	return ok
}

// Cell returns the raw trimmed value at (row, column), or "" when the row is
// too short or the column is absent
func (t *RawTable) Cell(row int, column string) string {
	idx, ok := t.Index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// Loader reads sales extracts from CSV or Excel files
type Loader struct {
	logger *slog.Logger
	config LoaderConfig
}

// NewLoader creates a loader. A nil logger falls back to slog.Default(),
// a zero config is filled from DefaultLoaderConfig().
func NewLoader(logger *slog.Logger, config LoaderConfig) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Comma == 0 {
		config.Comma = DefaultLoaderConfig().Comma
	}
	return &Loader{
		logger: logger,
		config: config,
	}
}

// Load reads the extract at path, dispatching on the file extension.
// Supported formats are .csv/.txt and .xlsx.
func (l *Loader) Load(ctx context.Context, path string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))

	l.logger.InfoContext(ctx, "loading sales extract",
		slog.String("path", path),
		slog.String("format", ext))

	var (
		table *RawTable
		err   error
	)

	switch ext {
	case ".csv", ".txt":
		table, err = l.loadCSV(ctx, path)
	case ".xlsx":
		table, err = l.loadExcel(ctx, path)
	default:
		return nil, errors.NewDataError(
			fmt.Sprintf("unsupported dataset format: %s", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "sales extract loaded",
		slog.String("path", path),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

func (l *Loader) loadCSV(ctx context.Context, path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("failed to open dataset file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = l.config.Comma
	reader.LazyQuotes = l.config.Lenient
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewDataError("failed to read dataset header", err).
			WithContext("path", path)
	}

	table, err := newRawTable(path, header)
	if err != nil {
		return nil, err
	}

	width := len(table.Columns)
	for {
		if len(table.Rows)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if l.config.Lenient {
				continue
			}
			return nil, errors.NewDataError("failed to read dataset row", err).
				WithContext("path", path).
				WithContext("row", len(table.Rows)+2)
		}

		table.Rows = append(table.Rows, fitRow(record, width))
	}

	return table, nil
}

func (l *Loader) loadExcel(ctx context.Context, path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewDataError("failed to open dataset file", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewDataError("workbook has no sheets", nil).
			WithContext("path", path)
	}

	// Prefer the first sheet that resolves the full header contract; extracts
	// sometimes carry a cover sheet ahead of the data.
	var firstErr error
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		headerRow, dataStart := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}

		table, err := newRawTable(path, rows[headerRow])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		width := len(table.Columns)
		for _, record := range rows[dataStart:] {
			if isEmptyRow(record) {
				continue
			}
			table.Rows = append(table.Rows, fitRow(record, width))
		}

		l.logger.Debug("found order data sheet",
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow))

		return table, nil
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, errors.NewDataError("no sheet contains order data", nil).
		WithContext("path", path).
		WithContext("sheets", strings.Join(sheets, ", "))
}

// newRawTable normalizes the header and verifies the required column contract,
// reporting every missing column at once.
func newRawTable(path string, header []string) (*RawTable, error) {
	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := NormalizeColumn(name)
		columns[i] = normalized
		if _, exists := index[normalized]; !exists && normalized != "" {
			index[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewDataError(
			fmt.Sprintf("dataset is missing required columns: %s", strings.Join(missing, ", ")), nil).
			WithContext("path", path).
			WithContext("missing_count", len(missing))
	}

	return &RawTable{
		Source:  path,
		Columns: columns,
		Index:   index,
	}, nil
}

// NormalizeColumn lowercases a header cell and unifies separators so that
// "Sub-Category", "sub_category" and "Sub Category " all resolve identically.
// A leading UTF-8 BOM is dropped so spreadsheet-exported files resolve too.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}

// findHeaderRow scans the leading rows of a sheet for the order header,
// returning the header index and the first data row index
func findHeaderRow(rows [][]string) (int, int) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}

	for i := 0; i < limit; i++ {
		seen := make(map[string]bool, len(rows[i]))
		for _, cell := range rows[i] {
			seen[NormalizeColumn(cell)] = true
		}

		found := true
		for _, required := range RequiredColumns {
			if !seen[required] {
				found = false
				break
			}
		}
		if found {
			return i, i + 1
		}
	}

	return -1, -1
}

// fitRow pads or truncates a record to the header width
func fitRow(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	fitted := make([]string, width)
	copy(fitted, record)
	return fitted
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
