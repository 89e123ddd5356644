package display

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/jparrax/datascience-middle-course/pkg/colormap"
	"github.com/jparrax/datascience-middle-course/pkg/model"
)

// ResponseMethod selects which classifier output colours the mesh.
type ResponseMethod string

const (
	ResponseAuto    ResponseMethod = "auto"
	ResponsePredict ResponseMethod = "predict"
	ResponseProba   ResponseMethod = "predict_proba"
)

// PlotMethod selects how the mesh response is drawn.
type PlotMethod string

const (
	PlotContourf   PlotMethod = "contourf"
	PlotPcolormesh PlotMethod = "pcolormesh"
	PlotContour    PlotMethod = "contour"
)

const (
	DefaultGridResolution = 100
	DefaultEps            = 1.0
	DefaultAlpha          = 1.0
	DefaultLevels         = 10

	meshColours = 256
)

var (
	ErrFeatureCount    = errors.New("display: decision boundary needs exactly two features")
	ErrEmptyMatrix     = errors.New("display: feature matrix has no rows")
	ErrMulticlassProba = errors.New("display: predict_proba response needs a binary classifier")
)

type settings struct {
	cmap       string
	alpha      float64
	resolution int
	eps        float64
	response   ResponseMethod
	method     PlotMethod
	levels     int
	xLabel     string
	yLabel     string
	ax         *Axes
}

// Option configures FromEstimator.
type Option func(*settings)

func WithColormap(name string) Option            { return func(s *settings) { s.cmap = name } }
func WithAlpha(a float64) Option                 { return func(s *settings) { s.alpha = a } }
func WithGridResolution(n int) Option            { return func(s *settings) { s.resolution = n } }
func WithEps(eps float64) Option                 { return func(s *settings) { s.eps = eps } }
func WithResponseMethod(m ResponseMethod) Option { return func(s *settings) { s.response = m } }
func WithPlotMethod(m PlotMethod) Option         { return func(s *settings) { s.method = m } }
func WithLevels(n int) Option                    { return func(s *settings) { s.levels = n } }
func WithAxes(ax *Axes) Option                   { return func(s *settings) { s.ax = ax } }

// WithFeatureNames labels the x and y axes.
func WithFeatureNames(x, y string) Option {
	return func(s *settings) { s.xLabel, s.yLabel = x, y }
}

// Display is a rendered decision boundary. Response[r][c] is the value at
// (XX0[c], XX1[r]).
type Display struct {
	Ax       *Axes
	XX0      []float64
	XX1      []float64
	Response [][]float64
	Method   ResponseMethod // resolved, never ResponseAuto
	Classes  []int
}

// FromEstimator evaluates clf over a grid spanning X's two feature ranges
// padded by eps and draws the result as the bottom layer of an axis.
func FromEstimator(clf model.Classifier, X mat.Matrix, opts ...Option) (*Display, error) {
	s := settings{
		cmap:       colormap.Default,
		alpha:      DefaultAlpha,
		resolution: DefaultGridResolution,
		eps:        DefaultEps,
		response:   ResponseAuto,
		method:     PlotContourf,
		levels:     DefaultLevels,
	}
	for _, o := range opts {
		o(&s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	if !clf.Fitted() {
		return nil, model.ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != 2 {
		return nil, errors.Wrapf(ErrFeatureCount, "X has %d columns", cols)
	}
	if rows == 0 {
		return nil, ErrEmptyMatrix
	}
	if n := clf.NFeatures(); n != 2 {
		return nil, errors.Wrapf(ErrFeatureCount, "classifier was fitted on %d features", n)
	}

	classes := clf.Classes()
	method := s.response
	if method == ResponseAuto {
		method = ResponsePredict
		if len(classes) == 2 {
			method = ResponseProba
		}
	}
	if method == ResponseProba && len(classes) != 2 {
		return nil, errors.Wrapf(ErrMulticlassProba, "classifier has %d classes", len(classes))
	}

	x0lo, x0hi := columnRange(X, 0, s.eps)
	x1lo, x1hi := columnRange(X, 1, s.eps)
	d := &Display{
		XX0:     linspace(x0lo, x0hi, s.resolution),
		XX1:     linspace(x1lo, x1hi, s.resolution),
		Method:  method,
		Classes: classes,
	}
	d.Response = evaluate(clf, d.XX0, d.XX1, method)

	cm, err := colormap.WithAlpha(s.cmap, s.alpha)
	if err != nil {
		return nil, err
	}

	d.Ax = s.ax
	if d.Ax == nil {
		d.Ax = NewAxes()
	}
	d.Ax.setLabelsIfEmpty(s.xLabel, s.yLabel)
	d.Ax.add(LayerBoundary, d.layer(cm, s))
	return d, nil
}

func (s *settings) validate() error {
	if s.resolution < 2 {
		return errors.Errorf("display: grid resolution must be >= 2, got %d", s.resolution)
	}
	if math.IsNaN(s.eps) || s.eps < 0 {
		return errors.Errorf("display: eps must be >= 0, got %v", s.eps)
	}
	if s.levels < 2 {
		return errors.Errorf("display: need at least 2 levels, got %d", s.levels)
	}
	switch s.response {
	case ResponseAuto, ResponsePredict, ResponseProba:
	default:
		return errors.Errorf("display: unknown response method %q", s.response)
	}
	switch s.method {
	case PlotContourf, PlotPcolormesh, PlotContour:
	default:
		return errors.Errorf("display: unknown plot method %q", s.method)
	}
	return nil
}

// layer builds the plotter for the resolved response and plot method.
func (d *Display) layer(cm palette.ColorMap, s settings) plot.Plotter {
	g := &mesh{x: d.XX0, y: d.XX1, z: d.Response}

	// predicted classes are coded 0..k-1; probabilities live in [0, 1]
	lo, hi, steps := 0.0, 1.0, s.levels
	if d.Method == ResponsePredict {
		hi = math.Max(float64(len(d.Classes)-1), 1)
		steps = int(hi) + 1
	}

	switch s.method {
	case PlotContour:
		levels := make([]float64, steps-1)
		for i := range levels {
			levels[i] = lo + (hi-lo)*(float64(i)+0.5)/float64(steps-1)
		}
		c := plotter.NewContour(g, levels, colormap.Palette(cm, len(levels)))
		c.Min, c.Max = lo, hi
		return c
	case PlotPcolormesh:
		if d.Method == ResponseProba {
			steps = meshColours
		}
	}
	h := plotter.NewHeatMap(g, colormap.Palette(cm, steps))
	h.Min, h.Max = lo, hi
	return h
}

func columnRange(X mat.Matrix, j int, eps float64) (lo, hi float64) {
	r, _ := X.Dims()
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		v := X.At(i, j)
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	return lo - eps, hi + eps
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func evaluate(clf model.Classifier, xs, ys []float64, method ResponseMethod) [][]float64 {
	pts := make([][]float64, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			pts = append(pts, []float64{x, y})
		}
	}

	z := make([][]float64, len(ys))
	for r := range z {
		z[r] = make([]float64, len(xs))
	}
	if method == ResponseProba {
		for k, p := range clf.PredictProba(pts) {
			z[k/len(xs)][k%len(xs)] = p[1]
		}
		return z
	}
	classes := clf.Classes()
	for k, lab := range clf.Predict(pts) {
		z[k/len(xs)][k%len(xs)] = float64(classPosition(classes, lab))
	}
	return z
}

func classPosition(classes []int, label int) int {
	for i, c := range classes {
		if c == label {
			return i
		}
	}
	return 0
}

// mesh adapts the evaluated grid to plotter.GridXYZ.
type mesh struct {
	x, y []float64
	z    [][]float64
}

func (m *mesh) Dims() (c, r int)   { return len(m.x), len(m.y) }
func (m *mesh) Z(c, r int) float64 { return m.z[r][c] }
func (m *mesh) X(c int) float64    { return m.x[c] }
func (m *mesh) Y(r int) float64    { return m.y[r] }
