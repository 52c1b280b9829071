package dataset

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

// CleanerConfig controls date parsing and imputation behavior
type CleanerConfig struct {
	// DateLayouts are tried in order when parsing order and ship dates
	DateLayouts []string
	// DayFirst prefers D/M/YYYY over M/D/YYYY for ambiguous slash dates
	DayFirst bool
}

// DefaultCleanerConfig returns layouts for the common extract date formats
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		DateLayouts: []string{"1/2/2006", "2006-01-02", "1/2/06"},
	}
}

// dayFirstLayouts mirrors the default layouts with day and month swapped
var dayFirstLayouts = []string{"2/1/2006", "2006-01-02", "2/1/06"}

// CleanReport counts everything the cleaner changed or rejected.
// Excluded rows are never silently dropped: every exclusion increments
// exactly one counter.
type CleanReport struct {
	InputRows              int `json:"input_rows"`
	OutputRows             int `json:"output_rows"`
	DuplicatesRemoved      int `json:"duplicates_removed"`
	BadDateRows            int `json:"bad_date_rows"`
	BadNumericRows         int `json:"bad_numeric_rows"`
	InvariantViolationRows int `json:"invariant_violation_rows"`
	NumericImputations     int `json:"numeric_imputations"`
	CategoricalImputations int `json:"categorical_imputations"`
	ShipBeforeOrderRows    int `json:"ship_before_order_rows"`
}

// ExcludedRows returns the number of input rows that did not survive cleaning
func (r CleanReport) ExcludedRows() int {
	return r.DuplicatesRemoved + r.BadDateRows + r.BadNumericRows + r.InvariantViolationRows
}

// IsNoOp reports whether the cleaner changed nothing at all
func (r CleanReport) IsNoOp() bool {
	return r.ExcludedRows() == 0 &&
		r.NumericImputations == 0 &&
		r.CategoricalImputations == 0
}

// CleanResult is the cleaner output: typed orders plus the change report
type CleanResult struct {
	Orders []domain.Order
	Report CleanReport
}

// Cleaner turns a raw extract into typed, deduplicated, imputed orders
type Cleaner struct {
	logger *slog.Logger
	config CleanerConfig
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default(),
// an empty layout list is filled from DefaultCleanerConfig().
func NewCleaner(logger *slog.Logger, config CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.DateLayouts) == 0 {
		if config.DayFirst {
			config.DateLayouts = dayFirstLayouts
		} else {
			config.DateLayouts = DefaultCleanerConfig().DateLayouts
		}
	}
	return &Cleaner{
		logger: logger,
		config: config,
	}
}

// numeric columns subject to median imputation when missing
var numericColumns = []string{ColSales, ColQuantity, ColDiscount, ColProfit}

// UnknownValue fills missing categorical cells
const UnknownValue = "Unknown"

// Clean applies the cleaning policy in a fixed order: exact duplicates are
// dropped first, then dates are parsed, then numeric fields are typed with
// missing values imputed by column median, then missing categoricals become
// "Unknown", then row invariants are enforced. Running Clean over already
// clean data is a no-op with an all-zero report.
func (c *Cleaner) Clean(ctx context.Context, table *RawTable) (*CleanResult, error) {
	if table == nil {
		return nil, errors.NewDataError("no dataset table to clean", nil)
	}

	report := CleanReport{InputRows: len(table.Rows)}

	rows := c.dedupe(table, &report)

	parsed := make([]*rowState, 0, len(rows))
	for _, i := range rows {
		if len(parsed)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		state := c.parseRow(table, i, &report)
		if state != nil {
			parsed = append(parsed, state)
		}
	}

	c.impute(parsed, &report)

	orders := make([]domain.Order, 0, len(parsed))
	for _, state := range parsed {
		if !c.checkInvariants(state, &report) {
			continue
		}
		orders = append(orders, state.order)
	}

	report.OutputRows = len(orders)

	c.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("input_rows", report.InputRows),
		slog.Int("output_rows", report.OutputRows),
		slog.Int("duplicates_removed", report.DuplicatesRemoved),
		slog.Int("bad_date_rows", report.BadDateRows),
		slog.Int("bad_numeric_rows", report.BadNumericRows),
		slog.Int("invariant_violation_rows", report.InvariantViolationRows),
		slog.Int("numeric_imputations", report.NumericImputations),
		slog.Int("categorical_imputations", report.CategoricalImputations),
		slog.Int("ship_before_order_rows", report.ShipBeforeOrderRows))

	return &CleanResult{Orders: orders, Report: report}, nil
}

// rowState carries a partially built order through the cleaning passes
type rowState struct {
	rawIndex int
	order    domain.Order
	// numeric cell values by column; NaN marks a missing cell awaiting imputation
	numeric map[string]float64
}

// dedupe returns the indices of rows surviving exact whole-row deduplication,
// keeping the first occurrence
func (c *Cleaner) dedupe(table *RawTable, report *CleanReport) []int {
	seen := make(map[string]bool, len(table.Rows))
	kept := make([]int, 0, len(table.Rows))

	for i, cells := range table.Rows {
		key := strings.Join(cells, "\x1f")
		if seen[key] {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		kept = append(kept, i)
	}

	return kept
}

// parseRow types a single raw row. Returns nil when the row is excluded.
func (c *Cleaner) parseRow(table *RawTable, i int, report *CleanReport) *rowState {
	orderID := table.Cell(i, ColOrderID)
	if orderID == "" {
		// An order id is identity, not a categorical; it cannot be imputed
		report.InvariantViolationRows++
		c.logRowExclusion(i, "missing order id")
		return nil
	}

	orderDate, ok := c.parseDate(table.Cell(i, ColOrderDate))
	if !ok {
		report.BadDateRows++
		c.logRowExclusion(i, "unparsable order date")
		return nil
	}
	shipDate, ok := c.parseDate(table.Cell(i, ColShipDate))
	if !ok {
		report.BadDateRows++
		c.logRowExclusion(i, "unparsable ship date")
		return nil
	}

	state := &rowState{
		rawIndex: i,
		numeric:  make(map[string]float64, len(numericColumns)),
	}

	for _, col := range numericColumns {
		raw := table.Cell(i, col)
		if raw == "" {
			state.numeric[col] = math.NaN()
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			report.BadNumericRows++
			c.logRowExclusion(i, "malformed "+col)
			return nil
		}
		state.numeric[col] = v
	}

	order := domain.Order{
		OrderID:   orderID,
		OrderDate: orderDate,
		ShipDate:  shipDate,

		ShipMode:     table.Cell(i, ColShipMode),
		CustomerID:   table.Cell(i, ColCustomerID),
		CustomerName: table.Cell(i, ColCustomerName),
		Segment:      table.Cell(i, ColSegment),
		Country:      table.Cell(i, ColCountry),
		City:         table.Cell(i, ColCity),
		State:        table.Cell(i, ColState),
		PostalCode:   table.Cell(i, ColPostalCode),
		Region:       table.Cell(i, ColRegion),
		ProductID:    table.Cell(i, ColProductID),
		Category:     table.Cell(i, ColCategory),
		SubCategory:  table.Cell(i, ColSubCategory),
		ProductName:  table.Cell(i, ColProductName),
	}

	// Row id is optional; fall back to the 1-based position in the extract
	order.RowID = i + 1
	if raw := table.Cell(i, ColRowID); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			order.RowID = id
		}
	}

	// Customer id is an aggregation key; derive a stable one from the name
	// rather than dropping the row
	if order.CustomerID == "" {
		if order.CustomerName != "" {
			order.CustomerID = order.CustomerName
		} else {
			order.CustomerID = UnknownValue
		}
	}

	state.order = order
	c.imputeCategoricals(state, report)

	return state
}

// imputeCategoricals fills missing categorical cells with "Unknown"
func (c *Cleaner) imputeCategoricals(state *rowState, report *CleanReport) {
	fields := []*string{
		&state.order.ShipMode, &state.order.CustomerName, &state.order.Segment,
		&state.order.Country, &state.order.City, &state.order.State,
		&state.order.PostalCode, &state.order.Region,
		&state.order.Category, &state.order.SubCategory, &state.order.ProductName,
	}
	for _, field := range fields {
		if *field == "" {
			*field = UnknownValue
			report.CategoricalImputations++
		}
	}
}

// impute computes per-column medians over all present values and fills the
// missing numeric cells, then finalizes the typed fields
func (c *Cleaner) impute(rows []*rowState, report *CleanReport) {
	medians := make(map[string]float64, len(numericColumns))
	for _, col := range numericColumns {
		var values []float64
		for _, state := range rows {
			if v := state.numeric[col]; !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		medians[col] = median(values)
	}

	for _, state := range rows {
		for _, col := range numericColumns {
			if math.IsNaN(state.numeric[col]) && !math.IsNaN(medians[col]) {
				state.numeric[col] = medians[col]
				report.NumericImputations++
			}
		}

		state.order.Sales = state.numeric[ColSales]
		state.order.Discount = state.numeric[ColDiscount]
		state.order.Profit = state.numeric[ColProfit]
		if qty := state.numeric[ColQuantity]; !math.IsNaN(qty) {
			state.order.Quantity = int(math.Round(qty))
		}
	}
}

// checkInvariants enforces the row invariants: sales must be non-negative,
// discount must lie in [0,1], dates must be defined. Ship-before-order rows
// are counted but kept.
func (c *Cleaner) checkInvariants(state *rowState, report *CleanReport) bool {
	o := &state.order

	// A column that was entirely missing leaves NaN behind; those rows
	// cannot be typed and are excluded as numeric failures
	for _, col := range numericColumns {
		if math.IsNaN(state.numeric[col]) {
			report.BadNumericRows++
			c.logRowExclusion(state.rawIndex, "numeric column has no values to impute from")
			return false
		}
	}

	if o.Sales < 0 {
		report.InvariantViolationRows++
		c.logRowExclusion(state.rawIndex, "negative sales")
		return false
	}
	if o.Discount < 0 || o.Discount > 1 {
		report.InvariantViolationRows++
		c.logRowExclusion(state.rawIndex, "discount outside [0,1]")
		return false
	}

	if o.ShipDate.Before(o.OrderDate) {
		report.ShipBeforeOrderRows++
	}

	return true
}

func (c *Cleaner) parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Excel extracts sometimes render dates with a time component
	for _, layout := range []string{"2006-01-02 15:04:05", "1/2/2006 15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func (c *Cleaner) logRowExclusion(rawIndex int, reason string) {
	c.logger.Debug("row excluded",
		slog.Int("row", rawIndex+1),
		slog.String("reason", reason))
}

// parseNumber parses a numeric cell, tolerating currency symbols and
// thousands separators
func parseNumber(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// median returns the linearly interpolated middle value of the samples,
// or NaN when there are none
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	index := 0.5 * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
