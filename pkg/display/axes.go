package display

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Layer kinds recorded on an Axes in drawing order.
const (
	LayerBoundary = "boundary"
	LayerScatter  = "scatter"
)

// Axes is the drawing surface shared by the boundary and scatter renderers.
type Axes struct {
	Plot   *plot.Plot
	layers []string
}

// NewAxes returns an empty axis.
func NewAxes() *Axes {
	p := plot.New()
	p.Legend.Top = true
	return &Axes{Plot: p}
}

// Layers returns the kinds of layers added so far, in order.
func (a *Axes) Layers() []string { return append([]string(nil), a.layers...) }

// SetTitle sets the figure title.
func (a *Axes) SetTitle(title string) { a.Plot.Title.Text = title }

func (a *Axes) add(kind string, ps ...plot.Plotter) {
	a.Plot.Add(ps...)
	a.layers = append(a.layers, kind)
}

// setLabelsIfEmpty fills axis labels without overriding ones set earlier.
func (a *Axes) setLabelsIfEmpty(x, y string) {
	if a.Plot.X.Label.Text == "" {
		a.Plot.X.Label.Text = x
	}
	if a.Plot.Y.Label.Text == "" {
		a.Plot.Y.Label.Text = y
	}
}

// Save renders the figure to path; the format follows the file extension
// (png, svg, pdf, jpg, eps, tif).
func (a *Axes) Save(path string, width, height vg.Length) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg", ".eps", ".tif", ".tiff":
	default:
		return errors.Errorf("display: unsupported output format %q", filepath.Ext(path))
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("display: invalid figure size %vx%v", width, height)
	}
	return errors.Wrapf(a.Plot.Save(width, height, path), "display: save %s", path)
}
