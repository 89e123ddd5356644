// Package dataprep fills missing feature values before training.
package dataprep

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/stats"
)

// Strategy names an imputation method.
type Strategy string

const (
	None   Strategy = "none"
	Mean   Strategy = "mean"
	Median Strategy = "median"
	Mode   Strategy = "mode"
)

// Strategies lists the accepted strategies.
func Strategies() []Strategy { return []Strategy{None, Mean, Median, Mode} }

// Impute returns a copy of f with NaNs in cols replaced by the column's
// statistic, plus the number of cells filled. f is not modified. A column
// with no present values is left as is.
func Impute(f *data.Frame, s Strategy, cols ...string) (*data.Frame, int, error) {
	if f == nil {
		return nil, 0, data.ErrEmptyFrame
	}
	var fill func([]float64) float64
	switch s {
	case "", None:
		return f, 0, nil
	case Mean:
		fill = func(x []float64) float64 { return stat.Mean(x, nil) }
	case Median:
		fill = stats.Median
	case Mode:
		fill = func(x []float64) float64 {
			m, _ := stat.Mode(x, nil)
			return m
		}
	default:
		return nil, 0, errors.Errorf("dataprep: unknown imputation strategy %q", s)
	}

	filled := 0
	out := f
	for _, name := range cols {
		col, err := out.Column(name)
		if err != nil {
			return nil, 0, err
		}
		present := stats.Present(col)
		if len(present) == len(col) || len(present) == 0 {
			continue
		}
		v := fill(present)
		vals := make([]float64, len(col))
		for i, c := range col {
			if math.IsNaN(c) {
				vals[i] = v
				filled++
			} else {
				vals[i] = c
			}
		}
		if out, err = out.WithColumn(name, vals); err != nil {
			return nil, 0, err
		}
	}
	return out, filled, nil
}
