package charts

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"retailcli/internal/errors"
)

// ProfitMarginBoxplot draws one box per category over the per-row profit
// margin distribution. A box needs at least two observations to have
// quartiles, so categories with fewer defined margins are skipped.
func (r *Renderer) ProfitMarginBoxplot(byCategory map[string][]float64) (string, error) {
	names := make([]string, 0, len(byCategory))
	for name, margins := range byCategory {
		if len(margins) >= 2 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", errors.NewRenderError("profit margin boxplot: no margin data", nil)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = "Profit Margin by Category"
	p.Y.Label.Text = "Margin"

	for i, name := range names {
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(byCategory[name]))
		if err != nil {
			return "", errors.NewRenderError("profit margin boxplot: box for "+name, err)
		}
		p.Add(box)
	}
	p.NominalX(names...)

	return r.save(p, ChartMarginBoxplot)
}
