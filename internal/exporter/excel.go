package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"retailcli/internal/analytics"
	"retailcli/internal/config"
	"retailcli/pkg/contracts/domain"
)

// Sheet names of the analysis workbook
const (
	SheetKPIs     = "KPIs"
	SheetSegments = "Segments"
	SheetCategory = "Category"
	SheetRegion   = "Region"
	SheetProducts = "Products"
	SheetTiers    = "Tiers"
)

// ExcelWriter generates the multi-sheet analysis workbook
type ExcelWriter struct {
	paths *config.Paths
}

// NewExcelWriter creates a new workbook writer
func NewExcelWriter(paths *config.Paths) *ExcelWriter {
	return &ExcelWriter{paths: paths}
}

// ExcelReport bundles the tables the analysis workbook carries
type ExcelReport struct {
	KPIs       analytics.KPIReport
	TierCounts map[domain.CustomerTier]int
	Customers  []domain.Customer
	Category   *analytics.Summary
	Region     *analytics.Summary
	Products   []domain.ProductPerformance
}

// WriteAnalysisWorkbook writes the full analysis workbook. Relative paths
// resolve into the reports directory; an existing workbook is replaced.
func (w *ExcelWriter) WriteAnalysisWorkbook(outputPath string, report ExcelReport) error {
	fullPath := outputPath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.GetReportPath(outputPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the KPI sheet; the rest follow it
	if err := f.SetSheetName(f.GetSheetName(0), SheetKPIs); err != nil {
		return fmt.Errorf("failed to name KPI sheet: %w", err)
	}
	for _, sheet := range []string{SheetSegments, SheetCategory, SheetRegion, SheetProducts} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeKPISheet(f, headerStyle, report.KPIs, report.TierCounts); err != nil {
		return err
	}
	if err := w.writeSegmentsSheet(f, headerStyle, report.Customers); err != nil {
		return err
	}
	if err := w.writeSummarySheet(f, headerStyle, SheetCategory, report.Category); err != nil {
		return err
	}
	if err := w.writeSummarySheet(f, headerStyle, SheetRegion, report.Region); err != nil {
		return err
	}
	if err := w.writeProductsSheet(f, headerStyle, report.Products); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Analysis workbook written",
		slog.String("path", fullPath),
		slog.Int("customers", len(report.Customers)),
		slog.Int("products", len(report.Products)))

	return nil
}

// WriteSegmentWorkbook writes the dated segment workbook: the per-customer
// RFM table plus a tier distribution sheet. The segment-report CLI produces
// one per run.
func (w *ExcelWriter) WriteSegmentWorkbook(outputPath string, customers []domain.Customer, tiers map[domain.CustomerTier]int) error {
	fullPath := outputPath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.GetReportPath(outputPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSegments); err != nil {
		return fmt.Errorf("failed to name segments sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTiers); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetTiers, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeSegmentsSheet(f, headerStyle, customers); err != nil {
		return err
	}

	tierRows := make([][]interface{}, 0, len(domain.CustomerTiers))
	for _, tier := range domain.CustomerTiers {
		tierRows = append(tierRows, []interface{}{string(tier), tiers[tier]})
	}
	if err := writeTable(f, headerStyle, SheetTiers, []string{"Tier", "Customers"}, tierRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Segment workbook written",
		slog.String("path", fullPath),
		slog.Int("customers", len(customers)))

	return nil
}

func (w *ExcelWriter) writeKPISheet(f *excelize.File, style int, k analytics.KPIReport, tiers map[domain.CustomerTier]int) error {
	var margin interface{} = "n/a"
	if k.HasMargin {
		margin = k.ProfitMargin
	}

	rows := [][]interface{}{
		{"Total Sales", k.TotalSales},
		{"Total Profit", k.TotalProfit},
		{"Profit Margin", margin},
		{"Orders", k.Orders},
		{"Customers", k.Customers},
		{"Average Order Value", k.AvgOrderValue},
		{"Profit per Order", k.ProfitPerOrder},
		{"Average Shipping Days", k.AvgShippingDays},
		{"Average Discount", k.AvgDiscount},
	}
	if err := writeTable(f, style, SheetKPIs, []string{"Metric", "Value"}, rows); err != nil {
		return err
	}

	// Tier distribution block below the KPI table
	start := len(rows) + 3
	headerCell, err := excelize.CoordinatesToCellName(1, start)
	if err != nil {
		return fmt.Errorf("bad tier header coordinate: %w", err)
	}
	tierHeader := []interface{}{"Tier", "Customers"}
	if err := f.SetSheetRow(SheetKPIs, headerCell, &tierHeader); err != nil {
		return fmt.Errorf("failed to write tier header: %w", err)
	}
	endCell, err := excelize.CoordinatesToCellName(len(tierHeader), start)
	if err != nil {
		return fmt.Errorf("bad tier header coordinate: %w", err)
	}
	if err := f.SetCellStyle(SheetKPIs, headerCell, endCell, style); err != nil {
		return fmt.Errorf("failed to style tier header: %w", err)
	}

	for i, tier := range domain.CustomerTiers {
		cell, err := excelize.CoordinatesToCellName(1, start+1+i)
		if err != nil {
			return fmt.Errorf("bad tier row coordinate: %w", err)
		}
		row := []interface{}{string(tier), tiers[tier]}
		if err := f.SetSheetRow(SheetKPIs, cell, &row); err != nil {
			return fmt.Errorf("failed to write tier row %s: %w", tier, err)
		}
	}

	return nil
}

func (w *ExcelWriter) writeSegmentsSheet(f *excelize.File, style int, customers []domain.Customer) error {
	sorted := make([]domain.Customer, len(customers))
	copy(sorted, customers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CustomerID < sorted[j].CustomerID
	})

	headers := []string{
		"CustomerID", "CustomerName", "Segment", "LastOrderDate", "RecencyDays",
		"Frequency", "Monetary", "SalesPerOrder", "RecencyScore", "FrequencyScore",
		"MonetaryScore", "RFMScore", "Tier",
	}

	rows := make([][]interface{}, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, []interface{}{
			c.CustomerID, c.CustomerName, c.Segment, formatDate(c.LastOrderDate),
			c.RecencyDays, c.Frequency, c.Monetary, c.SalesPerOrder,
			c.RecencyScore, c.FrequencyScore, c.MonetaryScore, c.RFMScore,
			string(c.Tier),
		})
	}

	return writeTable(f, style, SheetSegments, headers, rows)
}

func (w *ExcelWriter) writeSummarySheet(f *excelize.File, style int, sheet string, summary *analytics.Summary) error {
	if summary == nil {
		return fmt.Errorf("missing summary for sheet %s", sheet)
	}

	headers := make([]string, 0, len(summary.GroupBy)+10)
	for _, dim := range summary.GroupBy {
		headers = append(headers, headerForDimension(dim))
	}
	headers = append(headers,
		"Rows", "Orders", "TotalSales", "TotalProfit", "TotalQuantity",
		"MeanSales", "MeanProfit", "MeanDiscount", "MeanShippingDays", "ProfitMargin",
	)

	rows := make([][]interface{}, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		var margin interface{}
		if row.HasMargin {
			margin = row.ProfitMargin
		}

		cells := make([]interface{}, 0, len(headers))
		for _, key := range row.Key {
			cells = append(cells, key)
		}
		cells = append(cells,
			row.Rows, row.Orders, row.TotalSales, row.TotalProfit, row.TotalQuantity,
			row.MeanSales, row.MeanProfit, row.MeanDiscount, row.MeanShippingDays, margin,
		)
		rows = append(rows, cells)
	}

	return writeTable(f, style, sheet, headers, rows)
}

func (w *ExcelWriter) writeProductsSheet(f *excelize.File, style int, products []domain.ProductPerformance) error {
	sorted := make([]domain.ProductPerformance, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductName < sorted[j].ProductName
	})

	headers := []string{
		"ProductName", "Category", "Orders", "TotalSales", "TotalProfit",
		"MeanMargin", "Tier",
	}

	rows := make([][]interface{}, 0, len(sorted))
	for _, p := range sorted {
		rows = append(rows, []interface{}{
			p.ProductName, p.Category, p.Orders, p.TotalSales, p.TotalProfit,
			p.MeanMargin, string(p.Tier),
		})
	}

	return writeTable(f, style, SheetProducts, headers, rows)
}

// writeTable writes a styled header row, freezes it, and fills the data rows
func writeTable(f *excelize.File, style int, sheet string, headers []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("bad header coordinate: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("bad column number: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set %s column widths: %w", sheet, err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("bad row coordinate: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
