package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/pkg/contracts/domain"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func testOrder(orderID, customerID, orderDate string, sales, profit float64) domain.Order {
	return domain.Order{
		OrderID:      orderID,
		OrderDate:    day(orderDate),
		ShipDate:     day(orderDate).AddDate(0, 0, 3),
		CustomerID:   customerID,
		CustomerName: "Customer " + customerID,
		Segment:      "Consumer",
		Sales:        sales,
		Profit:       profit,
		Quantity:     1,
	}
}

func TestEnrich_CalendarColumns(t *testing.T) {
	orders := []domain.Order{testOrder("A-1", "C-1", "2023-01-05", 100, 20)}

	enriched := Enrich(orders)
	require.Len(t, enriched, 1)

	e := enriched[0]
	assert.Equal(t, 2023, e.OrderYear)
	assert.Equal(t, "2023-01", e.OrderMonth)
	assert.Equal(t, day("2023-01-01"), e.MonthStart)
	assert.Equal(t, "2023-Q1", e.OrderQuarter)
	assert.Equal(t, "Thursday", e.OrderWeekday)
	assert.Equal(t, 3, e.ShippingDays)
}

func TestEnrich_QuarterBoundaries(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2023-01-01", "2023-Q1"},
		{"2023-03-31", "2023-Q1"},
		{"2023-04-01", "2023-Q2"},
		{"2023-09-30", "2023-Q3"},
		{"2023-10-01", "2023-Q4"},
		{"2023-12-31", "2023-Q4"},
	}

	for _, tt := range tests {
		enriched := Enrich([]domain.Order{testOrder("A-1", "C-1", tt.date, 10, 1)})
		assert.Equal(t, tt.want, enriched[0].OrderQuarter, "date %s", tt.date)
	}
}

func TestEnrich_ProfitMargin(t *testing.T) {
	orders := []domain.Order{
		testOrder("A", "C-1", "2023-01-05", 100, 20),
		testOrder("B", "C-1", "2023-02-10", 50, -10),
		testOrder("C", "C-1", "2023-03-15", 0, 5),
	}

	enriched := Enrich(orders)
	require.Len(t, enriched, 3)

	assert.True(t, enriched[0].HasMargin)
	assert.InDelta(t, 0.20, enriched[0].ProfitMargin, 1e-9)

	assert.True(t, enriched[1].HasMargin)
	assert.InDelta(t, -0.20, enriched[1].ProfitMargin, 1e-9)

	// Zero sales leaves the margin undefined, not zero
	assert.False(t, enriched[2].HasMargin)
	assert.Equal(t, 0.0, enriched[2].ProfitMargin)

	// Distinct month buckets for the monthly aggregation
	assert.NotEqual(t, enriched[0].OrderMonth, enriched[1].OrderMonth)
}

func TestEnrich_PureAndOrderPreserving(t *testing.T) {
	orders := []domain.Order{
		testOrder("A-2", "C-2", "2023-05-01", 10, 1),
		testOrder("A-1", "C-1", "2023-01-05", 100, 20),
	}
	original := make([]domain.Order, len(orders))
	copy(original, orders)

	enriched := Enrich(orders)

	assert.Equal(t, original, orders)
	require.Len(t, enriched, 2)
	assert.Equal(t, "A-2", enriched[0].OrderID)
	assert.Equal(t, "A-1", enriched[1].OrderID)
}

func TestDiscountBand(t *testing.T) {
	tests := []struct {
		discount float64
		want     string
	}{
		{0, "0-10%"},
		{0.05, "0-10%"},
		{0.1, "0-10%"},
		{0.11, "10-20%"},
		{0.2, "10-20%"},
		{0.3, "20-30%"},
		{0.4, "30-40%"},
		{0.45, "40-50%"},
		{0.5, "40-50%"},
		{0.51, "50%+"},
		{1.0, "50%+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscountBand(tt.discount), "discount %v", tt.discount)
	}
}

func TestBuildCustomers(t *testing.T) {
	orders := []domain.Order{
		testOrder("O-1", "C-2", "2023-01-10", 100, 10),
		testOrder("O-2", "C-1", "2023-03-01", 50, 5),
		testOrder("O-3", "C-2", "2023-02-20", 200, -20),
		// Second line of an existing order: same order id
		testOrder("O-1", "C-2", "2023-01-10", 30, 3),
	}

	customers := BuildCustomers(orders)
	require.Len(t, customers, 2)

	// Sorted by customer id
	assert.Equal(t, "C-1", customers[0].CustomerID)
	assert.Equal(t, "C-2", customers[1].CustomerID)

	c1 := customers[0]
	assert.Equal(t, 1, c1.Frequency)
	assert.Equal(t, 50.0, c1.Monetary)
	assert.Equal(t, 5.0, c1.LifetimeValue)
	assert.Equal(t, day("2023-03-01"), c1.LastOrderDate)
	// C-1 placed the latest order in the dataset
	assert.Equal(t, 0, c1.RecencyDays)
	assert.Equal(t, 50.0, c1.SalesPerOrder)

	c2 := customers[1]
	// Two distinct order ids even though C-2 has three order lines
	assert.Equal(t, 2, c2.Frequency)
	assert.Equal(t, 330.0, c2.Monetary)
	assert.Equal(t, -7.0, c2.LifetimeValue)
	assert.Equal(t, day("2023-02-20"), c2.LastOrderDate)
	assert.Equal(t, 9, c2.RecencyDays)
	assert.Equal(t, 165.0, c2.SalesPerOrder)
}

func TestBuildCustomers_Empty(t *testing.T) {
	assert.Nil(t, BuildCustomers(nil))
	assert.Nil(t, BuildCustomers([]domain.Order{}))
}

func TestBuildCustomers_MostRecentProfile(t *testing.T) {
	first := testOrder("O-1", "C-1", "2023-01-01", 10, 1)
	first.Segment = "Consumer"
	latest := testOrder("O-2", "C-1", "2023-06-01", 10, 1)
	latest.Segment = "Corporate"
	latest.CustomerName = "Renamed Customer"

	customers := BuildCustomers([]domain.Order{latest, first})
	require.Len(t, customers, 1)

	assert.Equal(t, "Corporate", customers[0].Segment)
	assert.Equal(t, "Renamed Customer", customers[0].CustomerName)
}
