package display

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jparrax/datascience-middle-course/pkg/colormap"
	"github.com/jparrax/datascience-middle-course/pkg/data"
)

// DefaultMarkerSize is the marker area in points² used when none is given.
const DefaultMarkerSize = 36.0

// ScatterSpec names the columns and styling of a scatter overlay.
type ScatterSpec struct {
	X, Y     string  // position columns
	C        string  // colour-by column
	Size     float64 // marker area in points²; 0 means DefaultMarkerSize
	Colormap string  // empty means colormap.Default
	Ax       *Axes   // nil draws on a new axis
}

// MarkerRadius converts a marker area in points² to a glyph radius.
func MarkerRadius(area float64) vg.Length {
	return vg.Points(math.Sqrt(area) / 2)
}

// Scatter draws f's X and Y columns as points coloured by C onto spec.Ax and
// returns the axis. Integral C values get one legend entry each; other
// values are coloured point by point. Rows with a NaN coordinate are skipped.
func Scatter(f *data.Frame, spec ScatterSpec) (*Axes, error) {
	if f == nil {
		return nil, data.ErrEmptyFrame
	}
	if spec.Size < 0 || math.IsNaN(spec.Size) {
		return nil, errors.Errorf("display: marker size must be positive, got %v", spec.Size)
	}
	if spec.Size == 0 {
		spec.Size = DefaultMarkerSize
	}
	if spec.Colormap == "" {
		spec.Colormap = colormap.Default
	}

	xs, err := f.Column(spec.X)
	if err != nil {
		return nil, err
	}
	ys, err := f.Column(spec.Y)
	if err != nil {
		return nil, err
	}
	cs, err := f.Column(spec.C)
	if err != nil {
		return nil, err
	}
	cm, err := colormap.Lookup(spec.Colormap)
	if err != nil {
		return nil, err
	}

	ax := spec.Ax
	if ax == nil {
		ax = NewAxes()
	}

	lo, hi := finiteRange(cs)
	norm := func(v float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	}
	radius := MarkerRadius(spec.Size)

	var layers []*plotter.Scatter
	if integral(cs) {
		keys, groups := groupByClass(xs, ys, cs)
		levels := f.Categories(spec.C)
		for _, k := range keys {
			s, err := plotter.NewScatter(groups[k])
			if err != nil {
				return nil, errors.Wrapf(err, "display: scatter %s=%v", spec.C, k)
			}
			s.GlyphStyle = draw.GlyphStyle{
				Color:  colormap.At(cm, norm(k)),
				Radius: radius,
				Shape:  draw.CircleGlyph{},
			}
			ax.Plot.Legend.Add(legendLabel(spec.C, k, levels), s)
			layers = append(layers, s)
		}
	} else {
		var pts plotter.XYs
		var vals []float64
		for i := range cs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(cs[i]) {
				continue
			}
			pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
			vals = append(vals, cs[i])
		}
		if len(pts) > 0 {
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, errors.Wrapf(err, "display: scatter %s", spec.C)
			}
			s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				return draw.GlyphStyle{
					Color:  colormap.At(cm, norm(vals[i])),
					Radius: radius,
					Shape:  draw.CircleGlyph{},
				}
			}
			layers = append(layers, s)
		}
	}

	ax.setLabelsIfEmpty(spec.X, spec.Y)
	ps := make([]plot.Plotter, len(layers))
	for i, s := range layers {
		ps[i] = s
	}
	ax.add(LayerScatter, ps...)
	return ax, nil
}

// groupByClass buckets points by their class value, skipping rows with any
// NaN, and returns the class values in ascending order.
func groupByClass(xs, ys, cs []float64) ([]float64, map[float64]plotter.XYs) {
	groups := map[float64]plotter.XYs{}
	for i := range cs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(cs[i]) {
			continue
		}
		groups[cs[i]] = append(groups[cs[i]], plotter.XY{X: xs[i], Y: ys[i]})
	}
	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys, groups
}

func legendLabel(col string, v float64, levels []string) string {
	if i := int(v); levels != nil && i >= 0 && i < len(levels) {
		return fmt.Sprintf("%s = %s", col, levels[i])
	}
	return fmt.Sprintf("%s = %g", col, v)
}

// integral reports whether every non-NaN value is a whole number.
func integral(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func finiteRange(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
