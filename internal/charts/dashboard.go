package charts

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"retailcli/internal/analytics"
	"retailcli/internal/errors"
)

// KPIDashboard draws the headline figures as a three by two card grid on a
// hidden-axis canvas.
func (r *Renderer) KPIDashboard(k analytics.KPIReport) (string, error) {
	if k.Orders == 0 {
		return "", errors.NewRenderError("kpi dashboard: no orders", nil)
	}

	margin := "n/a"
	if k.HasMargin {
		margin = fmt.Sprintf("%.1f%%", k.ProfitMargin*100)
	}

	cells := []struct {
		title string
		value string
	}{
		{"Total Sales", money(k.TotalSales)},
		{"Total Profit", money(k.TotalProfit)},
		{"Profit Margin", margin},
		{"Orders", strconv.Itoa(k.Orders)},
		{"Customers", strconv.Itoa(k.Customers)},
		{"Avg Order Value", money(k.AvgOrderValue)},
	}

	var titles, values plotter.XYLabels
	for i, cell := range cells {
		col := float64(i % 3)
		row := 1 - float64(i/3) // first three cells on the top row
		titles.XYs = append(titles.XYs, plotter.XY{X: col + 0.5, Y: row + 0.6})
		titles.Labels = append(titles.Labels, cell.title)
		values.XYs = append(values.XYs, plotter.XY{X: col + 0.5, Y: row + 0.35})
		values.Labels = append(values.Labels, cell.value)
	}

	titleLabels, err := plotter.NewLabels(titles)
	if err != nil {
		return "", errors.NewRenderError("kpi dashboard: titles", err)
	}
	valueLabels, err := plotter.NewLabels(values)
	if err != nil {
		return "", errors.NewRenderError("kpi dashboard: values", err)
	}
	for i := range titleLabels.TextStyle {
		titleLabels.TextStyle[i].XAlign = text.XCenter
	}
	for i := range valueLabels.TextStyle {
		valueLabels.TextStyle[i].XAlign = text.XCenter
		valueLabels.TextStyle[i].Font.Size = vg.Points(20)
	}

	p := plot.New()
	p.Title.Text = "Retail Pulse KPIs"
	p.HideAxes()
	p.Add(titleLabels, valueLabels)
	p.X.Min, p.X.Max = 0, 3
	p.Y.Min, p.Y.Max = 0, 2

	return r.save(p, ChartKPIs)
}

// money formats an amount compactly for card display.
func money(v float64) string {
	switch {
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3 || v <= -1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
