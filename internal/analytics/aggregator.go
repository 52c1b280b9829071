package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"retailcli/internal/features"
)

// keySep joins multi-dimension group keys; it cannot occur in the data.
const keySep = "\x1f"

// ctxCheckInterval is how many rows are aggregated between context checks.
const ctxCheckInterval = 4096

// unknownKey labels rows that cannot resolve a requested dimension.
const unknownKey = "Unknown"

// Aggregator produces grouped summaries, KPI reports and ranked tables from
// enriched orders. It is stateless and safe for concurrent use.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to slog.Default().
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Summarize groups the filtered rows by the query's dimensions and computes
// the aggregate statistics per distinct key combination. Rows come back
// sorted by key so identical input yields identical output. An empty
// filtered set is a valid zero result, not an error.
func (a *Aggregator) Summarize(ctx context.Context, rows []features.Enriched, q Query) (*Summary, error) {
	start := time.Now()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string]*groupAcc)
	totals := newGroupAcc(nil)
	matched := 0

	for i := range rows {
		if i%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("summarize: %w", ctx.Err())
			default:
			}
		}

		r := &rows[i]
		if !q.Filter.Matches(r.Order) {
			continue
		}
		matched++

		key := make([]string, len(q.GroupBy))
		for j, d := range q.GroupBy {
			key[j] = q.dimensionValue(r, d)
		}

		mapKey := strings.Join(key, keySep)
		g, ok := groups[mapKey]
		if !ok {
			g = newGroupAcc(key)
			groups[mapKey] = g
		}

		g.add(r)
		totals.add(r)
	}

	summary := &Summary{GroupBy: q.GroupBy}

	if matched == 0 {
		a.logger.DebugContext(ctx, "aggregation matched no rows", "group_by", q.GroupBy)
		return summary, nil
	}

	// The separator sorts below every printable byte, so ordering the
	// joined keys orders the key tuples dimension by dimension.
	mapKeys := make([]string, 0, len(groups))
	for k := range groups {
		mapKeys = append(mapKeys, k)
	}
	sort.Strings(mapKeys)

	summary.Rows = make([]SummaryRow, 0, len(mapKeys))
	for _, k := range mapKeys {
		summary.Rows = append(summary.Rows, groups[k].finalize())
	}
	summary.Totals = totals.finalize()

	a.logger.DebugContext(ctx, "aggregation complete",
		"group_by", q.GroupBy,
		"rows_in", len(rows),
		"rows_matched", matched,
		"groups", len(summary.Rows),
		"duration", time.Since(start),
	)

	return summary, nil
}

// groupAcc accumulates one group's statistics during a Summarize pass.
type groupAcc struct {
	row          SummaryRow
	orderIDs     map[string]struct{}
	discount     float64
	shippingDays float64
}

func newGroupAcc(key []string) *groupAcc {
	return &groupAcc{
		row:      SummaryRow{Key: key},
		orderIDs: make(map[string]struct{}),
	}
}

func (g *groupAcc) add(r *features.Enriched) {
	g.row.Rows++
	g.row.TotalSales += r.Sales
	g.row.TotalProfit += r.Profit
	g.row.TotalQuantity += r.Quantity
	g.discount += r.Discount
	g.shippingDays += float64(r.ShippingDays)
	g.orderIDs[r.OrderID] = struct{}{}
}

func (g *groupAcc) finalize() SummaryRow {
	row := g.row
	row.Orders = len(g.orderIDs)
	if row.Rows > 0 {
		n := float64(row.Rows)
		row.MeanSales = row.TotalSales / n
		row.MeanProfit = row.TotalProfit / n
		row.MeanDiscount = g.discount / n
		row.MeanShippingDays = g.shippingDays / n
	}
	if row.TotalSales > 0 {
		row.ProfitMargin = row.TotalProfit / row.TotalSales
		row.HasMargin = true
	}
	return row
}

// dimensionValue resolves one dimension of an enriched row to its key value.
func (q Query) dimensionValue(r *features.Enriched, d Dimension) string {
	switch d {
	case DimCategory:
		return r.Category
	case DimSubCategory:
		return r.SubCategory
	case DimRegion:
		return r.Region
	case DimState:
		return r.State
	case DimCity:
		return r.City
	case DimSegment:
		return r.Segment
	case DimShipMode:
		return r.ShipMode
	case DimDiscountBand:
		return r.DiscountBand
	case DimOrderYear:
		return strconv.Itoa(r.OrderYear)
	case DimOrderMonth:
		return r.OrderMonth
	case DimOrderQuarter:
		return r.OrderQuarter
	case DimOrderWeekday:
		return r.OrderWeekday
	case DimCustomerTier:
		if tier, ok := q.CustomerTiers[r.CustomerID]; ok {
			return string(tier)
		}
		return unknownKey
	case DimProductTier:
		if tier, ok := q.ProductTiers[r.ProductName]; ok {
			return string(tier)
		}
		return unknownKey
	case DimCustomer:
		if r.CustomerName != "" {
			return r.CustomerName
		}
		return r.CustomerID
	case DimProduct:
		return r.ProductName
	default:
		return unknownKey
	}
}
