package charts

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"retailcli/internal/analytics"
	"retailcli/internal/errors"
)

// corrGrid adapts a correlation matrix to the heat map grid interface.
// Row 0 draws at the bottom, so rows and columns read the same order.
type corrGrid struct {
	m analytics.CorrelationMatrix
}

func (g corrGrid) Dims() (int, int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	v := g.m.At(r, c)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// CorrelationHeatmap draws the pairwise correlation matrix of the numeric
// order columns on a diverging blue-red scale fixed to [-1, 1].
func (r *Renderer) CorrelationHeatmap(m analytics.CorrelationMatrix) (string, error) {
	if len(m.Columns) == 0 {
		return "", errors.NewRenderError("correlation heatmap: empty matrix", nil)
	}

	pal := moreland.SmoothBlueRed().Palette(256)
	h := plotter.NewHeatMap(corrGrid{m: m}, pal)
	h.Min = -1
	h.Max = 1

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.Add(h)

	ticks := make([]plot.Tick, len(m.Columns))
	for i, name := range m.Columns {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -0.9

	return r.save(p, ChartCorrelation)
}
