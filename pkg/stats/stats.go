// Package stats summarises frame columns.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jparrax/datascience-middle-course/pkg/data"
)

// Summary describes one column. Statistics ignore missing values; they are
// NaN when the column has none present.
type Summary struct {
	Column  string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Median  float64
	Max     float64
}

// Describe summarises the named columns, or every column when none are given.
func Describe(f *data.Frame, cols ...string) ([]Summary, error) {
	if f == nil || f.Len() == 0 {
		return nil, data.ErrEmptyFrame
	}
	if len(cols) == 0 {
		cols = f.Names()
	}
	out := make([]Summary, 0, len(cols))
	for _, name := range cols {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, summarise(name, c))
	}
	return out, nil
}

func summarise(name string, col []float64) Summary {
	present := Present(col)
	s := Summary{Column: name, Count: len(present), Missing: len(col) - len(present)}
	if len(present) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Median, s.Max = nan, nan, nan, nan, nan
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(present, nil)
	if len(present) == 1 {
		s.Std = 0
	}
	s.Min, s.Max = floats.Min(present), floats.Max(present)
	s.Median = Median(present)
	return s
}

// Present returns the non-NaN values of x in a new slice.
func Present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Median returns the middle value of x, averaging the two middle values
// when len(x) is even. x is not modified.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	floats.Argsort(cp, make([]int, n))
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// ClassCounts returns how many rows carry each label.
func ClassCounts(labels []int) map[int]int {
	out := make(map[int]int)
	for _, l := range labels {
		out[l]++
	}
	return out
}
