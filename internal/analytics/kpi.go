package analytics

import (
	"gonum.org/v1/gonum/stat"

	"retailcli/internal/features"
)

// KPIs computes the headline figures over the full enriched set. Order and
// customer counts are distinct counts; the overall margin is undefined when
// the set has no sales. Zero rows yield a zero report.
func (a *Aggregator) KPIs(rows []features.Enriched) KPIReport {
	if len(rows) == 0 {
		return KPIReport{}
	}

	orderIDs := make(map[string]struct{})
	customerIDs := make(map[string]struct{})
	discounts := make([]float64, len(rows))
	shippingDays := make([]float64, len(rows))

	var report KPIReport
	for i := range rows {
		r := &rows[i]
		orderIDs[r.OrderID] = struct{}{}
		customerIDs[r.CustomerID] = struct{}{}
		report.TotalSales += r.Sales
		report.TotalProfit += r.Profit
		discounts[i] = r.Discount
		shippingDays[i] = float64(r.ShippingDays)
	}

	report.Orders = len(orderIDs)
	report.Customers = len(customerIDs)
	report.AvgDiscount = stat.Mean(discounts, nil)
	report.AvgShippingDays = stat.Mean(shippingDays, nil)

	if report.TotalSales > 0 {
		report.ProfitMargin = report.TotalProfit / report.TotalSales
		report.HasMargin = true
	}
	if report.Orders > 0 {
		report.AvgOrderValue = report.TotalSales / float64(report.Orders)
		report.ProfitPerOrder = report.TotalProfit / float64(report.Orders)
	}

	return report
}

// MarginsByCategory collects the defined profit margins of every category,
// in row order, for distribution plots. Margin-undefined rows are skipped;
// categories with no defined margin are absent from the result.
func MarginsByCategory(rows []features.Enriched) map[string][]float64 {
	margins := make(map[string][]float64)
	for i := range rows {
		r := &rows[i]
		if !r.HasMargin {
			continue
		}
		margins[r.Category] = append(margins[r.Category], r.ProfitMargin)
	}
	return margins
}
