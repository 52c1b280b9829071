package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/features"
	"retailcli/pkg/contracts/domain"
)

func TestKPIs(t *testing.T) {
	agg := NewAggregator(nil)

	report := agg.KPIs(fixtureRows())

	assert.InDelta(t, 1000.0, report.TotalSales, 1e-9)
	assert.InDelta(t, 140.0, report.TotalProfit, 1e-9)
	assert.True(t, report.HasMargin)
	assert.InDelta(t, 0.14, report.ProfitMargin, 1e-9)
	assert.Equal(t, 3, report.Orders)
	assert.Equal(t, 2, report.Customers)
	assert.InDelta(t, 1000.0/3, report.AvgOrderValue, 1e-9)
	assert.InDelta(t, 140.0/3, report.ProfitPerOrder, 1e-9)
	assert.InDelta(t, 0.15, report.AvgDiscount, 1e-9)
	assert.InDelta(t, 2.25, report.AvgShippingDays, 1e-9, "shipping spans of 3, 3, 2 and 1 days")
}

func TestKPIs_Empty(t *testing.T) {
	agg := NewAggregator(nil)

	assert.Equal(t, KPIReport{}, agg.KPIs(nil))
}

func TestKPIs_MarginUndefinedOnZeroSales(t *testing.T) {
	agg := NewAggregator(nil)
	rows := features.Enrich([]domain.Order{
		{
			OrderID:    "O-1",
			OrderDate:  time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
			ShipDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
			CustomerID: "C-1",
			Sales:      0,
			Profit:     -3,
		},
	})

	report := agg.KPIs(rows)

	assert.False(t, report.HasMargin)
	assert.Zero(t, report.ProfitMargin)
	assert.InDelta(t, -3.0, report.ProfitPerOrder, 1e-9)
}

func TestMarginsByCategory(t *testing.T) {
	margins := MarginsByCategory(fixtureRows())

	require.Len(t, margins, 2)
	require.Len(t, margins["Furniture"], 3)
	assert.InDelta(t, 0.2, margins["Furniture"][0], 1e-9)
	assert.InDelta(t, -0.05, margins["Furniture"][1], 1e-9)
	assert.InDelta(t, 0.1, margins["Furniture"][2], 1e-9)
	assert.InDelta(t, 0.3, margins["Technology"][0], 1e-9)

	t.Run("undefined margins are skipped", func(t *testing.T) {
		rows := features.Enrich([]domain.Order{
			{
				OrderID:    "O-1",
				OrderDate:  time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
				ShipDate:   time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
				CustomerID: "C-1",
				Category:   "Office Supplies",
				Sales:      0,
			},
		})

		assert.Empty(t, MarginsByCategory(rows))
	})
}
