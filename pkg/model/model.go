package model

import "github.com/pkg/errors"

// ErrNotFitted is returned when a classifier is used before Fit.
var ErrNotFitted = errors.New("model: classifier is not fitted")

// Classifier is a fitted multi-class classifier over dense float rows.
// Labels are arbitrary ints; Classes reports them in ascending order and
// PredictProba columns are aligned with that order.
type Classifier interface {
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) [][]float64
	Classes() []int
	NFeatures() int
	Fitted() bool
}

// checkXY validates a training set and returns the number of features.
func checkXY(prefix string, X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, errors.Errorf("%s: empty X", prefix)
	}
	if len(y) != len(X) {
		return 0, errors.Errorf("%s: X and y length mismatch (%d != %d)", prefix, len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return 0, errors.Errorf("%s: X has no features", prefix)
	}
	for i := range X {
		if len(X[i]) != p {
			return 0, errors.Errorf("%s: row %d has %d features, want %d", prefix, i, len(X[i]), p)
		}
	}
	return p, nil
}
