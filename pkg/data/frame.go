package data

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Canonical column names of the two-feature classification datasets.
const (
	FeatureX    = "Feature #0"
	FeatureY    = "Feature #1"
	ClassColumn = "Classes"
)

var (
	ErrColumnNotFound = errors.New("data: column not found")
	ErrEmptyFrame     = errors.New("data: empty frame")
	ErrRaggedRow      = errors.New("data: row length does not match header")
	ErrNotInteger     = errors.New("data: column is not integer valued")
)

// Frame is a table of named float64 columns of equal length.
type Frame struct {
	names      []string
	cols       map[string][]float64
	n          int
	categories map[string][]string // label text per code for encoded columns
}

// NewFrame builds a frame from column names and column slices. Columns are
// referenced, not copied.
func NewFrame(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, errors.Errorf("data: %d names for %d columns", len(names), len(cols))
	}
	f := &Frame{cols: make(map[string][]float64, len(names))}
	for i, name := range names {
		if _, dup := f.cols[name]; dup {
			return nil, errors.Errorf("data: duplicate column %q", name)
		}
		if i > 0 && len(cols[i]) != f.n {
			return nil, errors.Wrapf(ErrRaggedRow, "column %q has %d rows, want %d", name, len(cols[i]), f.n)
		}
		f.n = len(cols[i])
		f.names = append(f.names, name)
		f.cols[name] = cols[i]
	}
	return f, nil
}

// Names returns the column names in order.
func (f *Frame) Names() []string { return append([]string(nil), f.names...) }

// Len returns the number of rows.
func (f *Frame) Len() int { return f.n }

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column. The slice is shared with the frame.
func (f *Frame) Column(name string) ([]float64, error) {
	c, ok := f.cols[name]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q (have %v)", name, f.names)
	}
	return c, nil
}

// Categories returns the original text labels of a label-encoded column,
// indexed by code, or nil if the column was numeric.
func (f *Frame) Categories(name string) []string { return f.categories[name] }

// Matrix copies the named columns into an n x len(names) dense matrix.
func (f *Frame) Matrix(names ...string) (*mat.Dense, error) {
	if f.n == 0 {
		return nil, ErrEmptyFrame
	}
	if len(names) == 0 {
		return nil, errors.New("data: no columns requested")
	}
	m := mat.NewDense(f.n, len(names), nil)
	for j, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		m.SetCol(j, c)
	}
	return m, nil
}

// Rows returns the named columns as row slices.
func (f *Frame) Rows(names ...string) ([][]float64, error) {
	m, err := f.Matrix(names...)
	if err != nil {
		return nil, err
	}
	return DenseRows(m), nil
}

// Labels returns the named column as ints. Every value must be integral.
func (f *Frame) Labels(name string) ([]int, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(c))
	for i, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, errors.Wrapf(ErrNotInteger, "%q row %d = %v", name, i, v)
		}
		out[i] = int(v)
	}
	return out, nil
}

// Subset returns a new frame holding the given rows in order.
func (f *Frame) Subset(idx []int) *Frame {
	s := &Frame{
		names:      f.Names(),
		cols:       make(map[string][]float64, len(f.names)),
		n:          len(idx),
		categories: f.categories,
	}
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]float64, len(idx))
		for k, i := range idx {
			dst[k] = src[i]
		}
		s.cols[name] = dst
	}
	return s
}

// WithColumn returns a copy of f whose column name is replaced by vals.
// Other columns are shared with f.
func (f *Frame) WithColumn(name string, vals []float64) (*Frame, error) {
	if !f.Has(name) {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q", name)
	}
	if len(vals) != f.n {
		return nil, errors.Wrapf(ErrRaggedRow, "column %q has %d rows, want %d", name, len(vals), f.n)
	}
	s := &Frame{
		names:      f.Names(),
		cols:       make(map[string][]float64, len(f.cols)),
		n:          f.n,
		categories: f.categories,
	}
	for k, c := range f.cols {
		s.cols[k] = c
	}
	s.cols[name] = vals
	return s, nil
}

// DenseRows converts a matrix into row slices.
func DenseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		row := make([]float64, c)
		for j := range row {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}
