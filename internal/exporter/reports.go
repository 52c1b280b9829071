package exporter

import (
	"fmt"
	"sort"
	"strings"

	"retailcli/internal/analytics"
	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/pkg/contracts/domain"
)

// ReportExporter generates the CSV report tables of an analysis run
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCustomerSegments writes the scored customer table sorted by customer id
func (r *ReportExporter) ExportCustomerSegments(customers []domain.Customer, outputPath string) error {
	sorted := make([]domain.Customer, len(customers))
	copy(sorted, customers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CustomerID < sorted[j].CustomerID
	})

	records := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		records = append(records, []string{
			c.CustomerID,
			c.CustomerName,
			c.Segment,
			formatDate(c.LastOrderDate),
			formatInt(c.RecencyDays),
			formatInt(c.Frequency),
			formatFloat(c.Monetary),
			formatFloat(c.SalesPerOrder),
			formatInt(c.RecencyScore),
			formatInt(c.FrequencyScore),
			formatInt(c.MonetaryScore),
			formatInt(c.RFMScore),
			string(c.Tier),
		})
	}

	headers := []string{
		"CustomerID", "CustomerName", "Segment", "LastOrderDate", "RecencyDays",
		"Frequency", "Monetary", "SalesPerOrder", "RecencyScore", "FrequencyScore",
		"MonetaryScore", "RFMScore", "Tier",
	}

	return r.csvWriter.WriteSimpleCSV(outputPath, headers, records)
}

// ExportProductTiers writes the product performance table sorted by product name
func (r *ReportExporter) ExportProductTiers(products []domain.ProductPerformance, outputPath string) error {
	sorted := make([]domain.ProductPerformance, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductName < sorted[j].ProductName
	})

	records := make([][]string, 0, len(sorted))
	for _, p := range sorted {
		records = append(records, []string{
			p.ProductName,
			p.Category,
			formatInt(p.Orders),
			formatFloat(p.TotalSales),
			formatFloat(p.TotalProfit),
			formatFraction(p.MeanMargin, true),
			string(p.Tier),
		})
	}

	headers := []string{
		"ProductName", "Category", "Orders", "TotalSales", "TotalProfit",
		"MeanMargin", "Tier",
	}

	return r.csvWriter.WriteSimpleCSV(outputPath, headers, records)
}

// ExportSummary writes a grouped aggregate as a CSV table: one column per
// grouping dimension followed by the statistics columns
func (r *ReportExporter) ExportSummary(summary *analytics.Summary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("cannot export nil summary")
	}

	headers := make([]string, 0, len(summary.GroupBy)+10)
	for _, dim := range summary.GroupBy {
		headers = append(headers, headerForDimension(dim))
	}
	headers = append(headers,
		"Rows", "Orders", "TotalSales", "TotalProfit", "TotalQuantity",
		"MeanSales", "MeanProfit", "MeanDiscount", "MeanShippingDays", "ProfitMargin",
	)

	records := make([][]string, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		record := make([]string, 0, len(headers))
		record = append(record, row.Key...)
		record = append(record,
			formatInt(row.Rows),
			formatInt(row.Orders),
			formatFloat(row.TotalSales),
			formatFloat(row.TotalProfit),
			formatInt(row.TotalQuantity),
			formatFloat(row.MeanSales),
			formatFloat(row.MeanProfit),
			formatFraction(row.MeanDiscount, true),
			formatFloat(row.MeanShippingDays),
			formatFraction(row.ProfitMargin, row.HasMargin),
		)
		records = append(records, record)
	}

	return r.csvWriter.WriteSimpleCSV(outputPath, headers, records)
}

// ExportCleanReport writes the cleaning counters as a metric/value table,
// using the same metric names the JSON API reports
func (r *ReportExporter) ExportCleanReport(report dataset.CleanReport, outputPath string) error {
	records := [][]string{
		{"input_rows", formatInt(report.InputRows)},
		{"output_rows", formatInt(report.OutputRows)},
		{"duplicates_removed", formatInt(report.DuplicatesRemoved)},
		{"bad_date_rows", formatInt(report.BadDateRows)},
		{"bad_numeric_rows", formatInt(report.BadNumericRows)},
		{"invariant_violation_rows", formatInt(report.InvariantViolationRows)},
		{"ship_before_order_rows", formatInt(report.ShipBeforeOrderRows)},
		{"numeric_imputations", formatInt(report.NumericImputations)},
		{"categorical_imputations", formatInt(report.CategoricalImputations)},
		{"excluded_rows", formatInt(report.ExcludedRows())},
	}

	return r.csvWriter.WriteSimpleCSV(outputPath, []string{"Metric", "Value"}, records)
}

// headerForDimension renders a dimension name as a CamelCase column header,
// e.g. "sub_category" becomes "SubCategory"
func headerForDimension(dim analytics.Dimension) string {
	parts := strings.Split(string(dim), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
