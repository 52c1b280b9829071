package analytics

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/features"
	"retailcli/pkg/contracts/domain"
)

func correlationRows() []features.Enriched {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	newOrder := func(n, qty int, sales, profit float64, shipDays int) domain.Order {
		return domain.Order{
			OrderID:    "O-" + strconv.Itoa(n),
			OrderDate:  base,
			ShipDate:   base.AddDate(0, 0, shipDays),
			CustomerID: "C-1",
			Sales:      sales,
			Quantity:   qty,
			Profit:     profit,
		}
	}

	// Sales is exactly twice quantity and margin climbs linearly with
	// sales, so both pairs correlate perfectly. The last order has no
	// sales and therefore no margin.
	return features.Enrich([]domain.Order{
		newOrder(1, 1, 2, 1, 1),
		newOrder(2, 2, 4, 3, 2),
		newOrder(3, 3, 6, 6, 3),
		newOrder(4, 0, 0, 0, 4),
	})
}

func TestCorrelations(t *testing.T) {
	agg := NewAggregator(nil)

	m := agg.Correlations(correlationRows())

	require.Equal(t, CorrelationColumns, m.Columns)
	require.Len(t, m.Values, len(CorrelationColumns))
	for _, row := range m.Values {
		require.Len(t, row, len(CorrelationColumns))
	}

	salesIdx, qtyIdx, discIdx, marginIdx := 0, 1, 2, 5

	assert.InDelta(t, 1.0, m.At(salesIdx, salesIdx), 1e-9)
	assert.InDelta(t, 1.0, m.At(salesIdx, qtyIdx), 1e-9, "sales is an exact multiple of quantity")
	assert.InDelta(t, 1.0, m.At(salesIdx, marginIdx), 1e-9, "margin climbs linearly over the three margined rows")
	assert.InDelta(t, m.At(qtyIdx, salesIdx), m.At(salesIdx, qtyIdx), 1e-12, "matrix is symmetric")

	// Discount is constant zero across the fixture, so every pair that
	// involves it has no defined correlation.
	assert.True(t, math.IsNaN(m.At(discIdx, salesIdx)))
	assert.True(t, math.IsNaN(m.At(discIdx, discIdx)))

	for i := range m.Values {
		for j := range m.Values[i] {
			v := m.At(i, j)
			if !math.IsNaN(v) {
				assert.GreaterOrEqual(t, v, -1.0-1e-9)
				assert.LessOrEqual(t, v, 1.0+1e-9)
			}
		}
	}
}

func TestCorrelations_MarginExcludedPairwise(t *testing.T) {
	agg := NewAggregator(nil)
	rows := correlationRows()

	m := agg.Correlations(rows)

	// The zero-sales row only drops out of margin pairs; sales/quantity
	// still correlate over all four rows.
	assert.InDelta(t, 1.0, m.At(0, 1), 1e-9)
	assert.False(t, math.IsNaN(m.At(0, 5)), "three complete margin pairs remain")
}

func TestCorrelations_Empty(t *testing.T) {
	agg := NewAggregator(nil)

	m := agg.Correlations(nil)

	require.Equal(t, CorrelationColumns, m.Columns)
	for i := range m.Values {
		for j := range m.Values[i] {
			assert.True(t, math.IsNaN(m.At(i, j)))
		}
	}
}
