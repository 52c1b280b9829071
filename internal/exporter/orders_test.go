package exporter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/dataset"
	"retailcli/pkg/contracts/domain"
)

func cleanedOrder(rowID int, orderID string, orderDate time.Time, sales float64) domain.Order {
	return domain.Order{
		RowID:        rowID,
		OrderID:      orderID,
		OrderDate:    orderDate,
		ShipDate:     orderDate.AddDate(0, 0, 3),
		ShipMode:     "Standard Class",
		CustomerID:   "CG-12520",
		CustomerName: "Claire Gute",
		Segment:      "Consumer",
		Country:      "United States",
		City:         "Henderson",
		State:        "Kentucky",
		PostalCode:   "42420",
		Region:       "South",
		ProductID:    "FUR-BO-10001798",
		Category:     "Furniture",
		SubCategory:  "Bookcases",
		ProductName:  "Bush Somerset Collection Bookcase",
		Sales:        sales,
		Quantity:     2,
		Discount:     0.2,
		Profit:       41.91,
	}
}

func TestExportCleanedOrders_SortsAndFormats(t *testing.T) {
	paths := testPaths(t)
	exp := NewOrdersExporter(paths)

	jan := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)

	// Deliberately unsorted input
	orders := []domain.Order{
		cleanedOrder(3, "CA-2023-200", mar, 400),
		cleanedOrder(2, "CA-2023-100", jan, 200),
		cleanedOrder(1, "CA-2023-100", jan, 100),
	}

	require.NoError(t, exp.ExportCleanedOrders(orders, "orders_clean.csv"))

	hasBOM, rows := readCSV(t, paths.GetReportPath("orders_clean.csv"))
	assert.False(t, hasBOM, "cleaned orders skip the BOM so the loader can read them")
	require.Len(t, rows, 4)

	assert.Equal(t, "Row ID", rows[0][0])
	assert.Equal(t, "Profit", rows[0][len(rows[0])-1])

	// Sorted by date, order id, then row id
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "3", rows[3][0])

	first := rows[1]
	assert.Equal(t, "CA-2023-100", first[1])
	assert.Equal(t, "2023-01-05", first[2])
	assert.Equal(t, "2023-01-08", first[3])
	assert.Equal(t, "100.00", first[17])
	assert.Equal(t, "0.2000", first[19])
}

func TestExportCleanedOrders_LoaderRoundTrip(t *testing.T) {
	// The exported file must load and clean straight back into the same orders.
	paths := testPaths(t)
	exp := NewOrdersExporter(paths)

	jan := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		cleanedOrder(1, "CA-2023-100", jan, 261.96),
		cleanedOrder(2, "CA-2023-150", feb, 731.94),
	}

	outPath := filepath.Join(paths.ReportsDir, "orders_clean.csv")
	require.NoError(t, exp.ExportCleanedOrders(orders, outPath))

	loader := dataset.NewLoader(nil, dataset.DefaultLoaderConfig())
	table, err := loader.Load(context.Background(), outPath)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	cleaner := dataset.NewCleaner(nil, dataset.DefaultCleanerConfig())
	result, err := cleaner.Clean(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	assert.True(t, result.Report.IsNoOp(), "cleaning an exported file changes nothing")
	assert.Equal(t, orders, result.Orders)
}
