package analytics

import (
	"sort"

	"retailcli/internal/errors"
	"retailcli/internal/features"
)

// TopN ranks the rows' dimension values by a metric and returns the leading
// n entries, or the trailing n when ascending is set. Equal metric values
// order by label so the ranking is deterministic. Tier dimensions rank as
// "Unknown" here; rank tiers through Summarize with joins instead.
func (a *Aggregator) TopN(rows []features.Enriched, dimension Dimension, metric Metric, n int, ascending bool) ([]TopRow, error) {
	if !dimension.IsValid() {
		return nil, errors.NewAppValidationError("unknown ranking dimension: " + string(dimension))
	}
	if !metric.IsValid() {
		return nil, errors.NewAppValidationError("unknown ranking metric: " + string(metric))
	}
	if n <= 0 {
		return nil, errors.NewAppValidationError("ranking size must be positive")
	}

	type entry struct {
		value    float64
		orderIDs map[string]struct{}
	}

	var q Query
	byLabel := make(map[string]*entry)
	for i := range rows {
		r := &rows[i]
		label := q.dimensionValue(r, dimension)
		e, ok := byLabel[label]
		if !ok {
			e = &entry{orderIDs: make(map[string]struct{})}
			byLabel[label] = e
		}

		switch metric {
		case MetricSales:
			e.value += r.Sales
		case MetricProfit:
			e.value += r.Profit
		case MetricQuantity:
			e.value += float64(r.Quantity)
		case MetricOrders:
			e.orderIDs[r.OrderID] = struct{}{}
		}
	}

	ranked := make([]TopRow, 0, len(byLabel))
	for label, e := range byLabel {
		value := e.value
		if metric == MetricOrders {
			value = float64(len(e.orderIDs))
		}
		ranked = append(ranked, TopRow{Label: label, Value: value})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			if ascending {
				return ranked[i].Value < ranked[j].Value
			}
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Label < ranked[j].Label
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
