package data

import (
	"math/rand"

	"github.com/pkg/errors"
)

// TrainTestSplit shuffles the rows with seed and holds out
// floor(n*testRatio) of them as the test frame.
func TrainTestSplit(f *Frame, testRatio float64, seed int64) (train, test *Frame, err error) {
	if f.Len() == 0 {
		return nil, nil, ErrEmptyFrame
	}
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, errors.Errorf("data: test ratio must be in [0, 1), got %v", testRatio)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(f.Len())
	nTest := int(float64(f.Len()) * testRatio)
	return f.Subset(indices[nTest:]), f.Subset(indices[:nTest]), nil
}

// KFoldSplit deals n shuffled row indices into k folds.
func KFoldSplit(n, k int, seed int64) ([][]int, error) {
	if k < 2 || k > n {
		return nil, errors.Errorf("data: need 2 <= k <= n, got k=%d n=%d", k, n)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range indices {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds, nil
}
