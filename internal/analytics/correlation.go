package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"retailcli/internal/features"
)

// CorrelationColumns lists the numeric analysis columns of the correlation
// matrix, in matrix order.
var CorrelationColumns = []string{
	"sales", "quantity", "discount", "profit", "shipping_days", "profit_margin",
}

// CorrelationMatrix holds pairwise Pearson correlations between the numeric
// analysis columns. Values[i][j] correlates Columns[i] with Columns[j]; a
// cell is NaN when fewer than two complete pairs exist or a column is
// constant over them.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the correlation between columns i and j.
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Correlations computes the pairwise correlation matrix over the enriched
// rows. Rows with an undefined profit margin drop out of margin pairs only,
// so the rest of the matrix keeps the full sample.
func (a *Aggregator) Correlations(rows []features.Enriched) CorrelationMatrix {
	columns := make([][]float64, len(CorrelationColumns))
	for i := range columns {
		columns[i] = make([]float64, len(rows))
	}

	for i := range rows {
		r := &rows[i]
		columns[0][i] = r.Sales
		columns[1][i] = float64(r.Quantity)
		columns[2][i] = r.Discount
		columns[3][i] = r.Profit
		columns[4][i] = float64(r.ShippingDays)
		if r.HasMargin {
			columns[5][i] = r.ProfitMargin
		} else {
			columns[5][i] = math.NaN()
		}
	}

	values := make([][]float64, len(columns))
	for i := range columns {
		values[i] = make([]float64, len(columns))
		for j := range columns {
			values[i][j] = pairwiseCorrelation(columns[i], columns[j])
		}
	}

	return CorrelationMatrix{Columns: CorrelationColumns, Values: values}
}

// pairwiseCorrelation drops positions where either series is NaN and defers
// to gonum over the complete pairs.
func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
