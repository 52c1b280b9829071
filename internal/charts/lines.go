package charts

import (
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"retailcli/internal/analytics"
	"retailcli/internal/errors"
)

// TimeSeries draws monthly sales and profit lines. The summary must be
// grouped by order month so each row key parses as a 2006-01 label.
func (r *Renderer) TimeSeries(monthly *analytics.Summary) (string, error) {
	if monthly == nil || len(monthly.Rows) == 0 {
		return "", errors.NewRenderError("time series: no monthly data", nil)
	}

	sales := make(plotter.XYs, 0, len(monthly.Rows))
	profit := make(plotter.XYs, 0, len(monthly.Rows))
	for _, row := range monthly.Rows {
		if len(row.Key) == 0 {
			return "", errors.NewRenderError("time series: row without month key", nil)
		}
		month, err := time.ParseInLocation("2006-01", row.Key[0], time.UTC)
		if err != nil {
			return "", errors.NewRenderError("time series: bad month key "+row.Key[0], err)
		}

		x := float64(month.Unix())
		sales = append(sales, plotter.XY{X: x, Y: row.TotalSales})
		profit = append(profit, plotter.XY{X: x, Y: row.TotalProfit})
	}

	p := plot.New()
	p.Title.Text = "Monthly Sales and Profit"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Amount"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01", Time: plot.UnixTimeIn(time.UTC)}
	p.Add(plotter.NewGrid())

	salesLine, err := plotter.NewLine(sales)
	if err != nil {
		return "", errors.NewRenderError("time series: sales line", err)
	}
	salesLine.Color = plotutil.Color(0)
	salesLine.Width = vg.Points(1.5)

	profitLine, err := plotter.NewLine(profit)
	if err != nil {
		return "", errors.NewRenderError("time series: profit line", err)
	}
	profitLine.Color = plotutil.Color(1)
	profitLine.Width = vg.Points(1.5)

	p.Add(salesLine, profitLine)
	p.Legend.Add("Sales", salesLine)
	p.Legend.Add("Profit", profitLine)
	p.Legend.Top = true

	return r.save(p, ChartTimeSeries)
}
