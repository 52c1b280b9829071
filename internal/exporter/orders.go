package exporter

import (
	"fmt"
	"sort"

	"retailcli/internal/config"
	"retailcli/pkg/contracts/domain"
)

// OrdersExporter writes the cleaned order table back to disk
type OrdersExporter struct {
	csvWriter *CSVWriter
}

// NewOrdersExporter creates a new cleaned-orders exporter
func NewOrdersExporter(paths *config.Paths) *OrdersExporter {
	return &OrdersExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCleanedOrders streams the cleaned orders to a single CSV file,
// sorted by order date, order id and row id. The header matches the input
// extract so the file can be fed straight back into the dataset loader,
// and no BOM is written for the same reason.
func (e *OrdersExporter) ExportCleanedOrders(orders []domain.Order, outputPath string) error {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.Before(b.OrderDate)
		}
		if a.OrderID != b.OrderID {
			return a.OrderID < b.OrderID
		}
		return a.RowID < b.RowID
	})

	stream, err := e.csvWriter.CreateStreamWriter(outputPath, e.getHeaders())
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for _, order := range sorted {
		if err := stream.WriteRecord(e.orderToCSVRow(order)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write order %s: %w", order.OrderID, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}

	return nil
}

// getHeaders returns the CSV headers for cleaned orders, in the column
// order of the original sales extract
func (e *OrdersExporter) getHeaders() []string {
	return []string{
		"Row ID", "Order ID", "Order Date", "Ship Date", "Ship Mode",
		"Customer ID", "Customer Name", "Segment", "Country", "City", "State",
		"Postal Code", "Region", "Product ID", "Category", "Sub-Category",
		"Product Name", "Sales", "Quantity", "Discount", "Profit",
	}
}

// orderToCSVRow converts an order line to a CSV row
func (e *OrdersExporter) orderToCSVRow(order domain.Order) []string {
	return []string{
		formatInt(order.RowID),
		order.OrderID,
		formatDate(order.OrderDate),
		formatDate(order.ShipDate),
		order.ShipMode,
		order.CustomerID,
		order.CustomerName,
		order.Segment,
		order.Country,
		order.City,
		order.State,
		order.PostalCode,
		order.Region,
		order.ProductID,
		order.Category,
		order.SubCategory,
		order.ProductName,
		formatFloat(order.Sales),
		formatInt(order.Quantity),
		formatFraction(order.Discount, true),
		formatFloat(order.Profit),
	}
}
