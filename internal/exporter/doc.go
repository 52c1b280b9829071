// Package exporter writes the report artifacts of an analysis run.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing with UTF-8 BOM support for spreadsheet
// compatibility and a streaming writer for large tables.
//
// OrdersExporter: Streams the cleaned order table to a single CSV whose
// header matches the input extract, so the file loads straight back
// through the dataset loader.
//
// ReportExporter: Writes the analysis tables as CSV: scored customer
// segments, product performance tiers, grouped summaries and the
// cleaning report.
//
// ExcelWriter: Builds the multi-sheet retail_analysis.xlsx workbook
// (KPIs, Segments, Category, Region, Products) with styled, frozen
// header rows.
//
// Example usage:
//
//	reports := exporter.NewReportExporter(paths)
//	if err := reports.ExportCustomerSegments(customers, "customers.csv"); err != nil {
//		return err
//	}
//
//	excel := exporter.NewExcelWriter(paths)
//	err := excel.WriteAnalysisWorkbook("retail_analysis.xlsx", exporter.ExcelReport{
//		KPIs:      kpis,
//		Customers: customers,
//	})
package exporter
