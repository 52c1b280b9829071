package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"retailcli/internal/analytics"
	"retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

// CustomerSegments draws the customer count per value tier, Bronze through
// Platinum in tier order.
func (r *Renderer) CustomerSegments(counts map[domain.CustomerTier]int) (string, error) {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return "", errors.NewRenderError("customer segments: no scored customers", nil)
	}

	values := make(plotter.Values, len(domain.CustomerTiers))
	names := make([]string, len(domain.CustomerTiers))
	for i, tier := range domain.CustomerTiers {
		values[i] = float64(counts[tier])
		names[i] = string(tier)
	}

	p := plot.New()
	p.Title.Text = "Customer Value Tiers"
	p.Y.Label.Text = "Customers"

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return "", errors.NewRenderError("customer segments: bars", err)
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(names...)

	return r.save(p, ChartSegments)
}

// ProductPerformance draws the top products by sales.
func (r *Renderer) ProductPerformance(top []analytics.TopRow) (string, error) {
	return r.rankedBars(ChartProducts, "Top Products by Sales", "Sales", top, plotutil.Color(0))
}

// GeographicAnalysis draws the top states by sales.
func (r *Renderer) GeographicAnalysis(top []analytics.TopRow) (string, error) {
	return r.rankedBars(ChartGeography, "Top States by Sales", "Sales", top, plotutil.Color(1))
}

// rankedBars draws a horizontal bar chart of a ranked table with the leader
// at the top.
func (r *Renderer) rankedBars(name, title, xLabel string, top []analytics.TopRow, c color.Color) (string, error) {
	if len(top) == 0 {
		return "", errors.NewRenderError(name+": empty ranking", nil)
	}

	// Horizontal bars draw bottom-up, so reverse the ranking.
	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, row := range top {
		j := len(top) - 1 - i
		values[j] = row.Value
		labels[j] = row.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return "", errors.NewRenderError(name+": bars", err)
	}
	bars.Horizontal = true
	bars.Color = c
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalY(labels...)

	return r.save(p, name)
}

// CategoryAnalysis draws sales per sub-category with one bar series per
// category, so the legend carries the category colors. The summary must be
// grouped by category then sub-category.
func (r *Renderer) CategoryAnalysis(categories *analytics.Summary) (string, error) {
	if categories == nil || len(categories.Rows) == 0 {
		return "", errors.NewRenderError("category analysis: no category data", nil)
	}

	labels := make([]string, len(categories.Rows))
	var order []string
	seen := make(map[string]bool)
	for i, row := range categories.Rows {
		if len(row.Key) < 2 {
			return "", errors.NewRenderError("category analysis: need category and sub-category keys", nil)
		}
		labels[i] = row.Key[1]
		if !seen[row.Key[0]] {
			seen[row.Key[0]] = true
			order = append(order, row.Key[0])
		}
	}

	p := plot.New()
	p.Title.Text = "Sales by Category and Sub-Category"
	p.Y.Label.Text = "Sales"

	// Rows are key-sorted, so each series holds a contiguous run of
	// non-zero positions and zeros elsewhere.
	for ci, cat := range order {
		values := make(plotter.Values, len(categories.Rows))
		for i, row := range categories.Rows {
			if row.Key[0] == cat {
				values[i] = row.TotalSales
			}
		}

		bars, err := plotter.NewBarChart(values, vg.Points(18))
		if err != nil {
			return "", errors.NewRenderError("category analysis: bars for "+cat, err)
		}
		bars.Color = plotutil.Color(ci)
		bars.LineStyle.Width = 0

		p.Add(bars)
		p.Legend.Add(cat, bars)
	}

	p.NominalX(labels...)
	p.Legend.Top = true

	return r.save(p, ChartCategories)
}

// ShippingAnalysis draws the average shipping days per ship mode. The
// summary must be grouped by ship mode.
func (r *Renderer) ShippingAnalysis(shipping *analytics.Summary) (string, error) {
	if shipping == nil || len(shipping.Rows) == 0 {
		return "", errors.NewRenderError("shipping analysis: no ship mode data", nil)
	}

	values := make(plotter.Values, len(shipping.Rows))
	names := make([]string, len(shipping.Rows))
	for i, row := range shipping.Rows {
		values[i] = row.MeanShippingDays
		names[i] = row.Label()
	}

	p := plot.New()
	p.Title.Text = "Average Shipping Days by Ship Mode"
	p.Y.Label.Text = "Days"

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return "", errors.NewRenderError("shipping analysis: bars", err)
	}
	bars.Color = plotutil.Color(3)
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(names...)

	return r.save(p, ChartShipping)
}

// DiscountAnalysis draws total sales and profit side by side per discount
// band. The summary must be grouped by discount band; band labels already
// sort in ascending discount order.
func (r *Renderer) DiscountAnalysis(discounts *analytics.Summary) (string, error) {
	if discounts == nil || len(discounts.Rows) == 0 {
		return "", errors.NewRenderError("discount analysis: no discount data", nil)
	}

	sales := make(plotter.Values, len(discounts.Rows))
	profit := make(plotter.Values, len(discounts.Rows))
	names := make([]string, len(discounts.Rows))
	for i, row := range discounts.Rows {
		sales[i] = row.TotalSales
		profit[i] = row.TotalProfit
		names[i] = row.Label()
	}

	p := plot.New()
	p.Title.Text = "Sales and Profit by Discount Band"
	p.Y.Label.Text = "Amount"

	width := vg.Points(16)

	salesBars, err := plotter.NewBarChart(sales, width)
	if err != nil {
		return "", errors.NewRenderError("discount analysis: sales bars", err)
	}
	salesBars.Color = plotutil.Color(0)
	salesBars.LineStyle.Width = 0
	salesBars.Offset = -width / 2

	profitBars, err := plotter.NewBarChart(profit, width)
	if err != nil {
		return "", errors.NewRenderError("discount analysis: profit bars", err)
	}
	profitBars.Color = plotutil.Color(1)
	profitBars.LineStyle.Width = 0
	profitBars.Offset = width / 2

	p.Add(salesBars, profitBars)
	p.Legend.Add("Sales", salesBars)
	p.Legend.Add("Profit", profitBars)
	p.Legend.Top = true
	p.NominalX(names...)

	return r.save(p, ChartDiscounts)
}
