package model

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"
)

// RandomForest is a bagged ensemble of decision trees.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64

	Trees     []*DecisionTreeClassifier
	classes   []int
	nFeatures int
}

// RandomForestOption configures a RandomForest.
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) RandomForestOption  { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithForestMinSamplesSplit(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.MinSamplesSplit = n }
}
func WithForestMinSamplesLeaf(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.MinSamplesLeaf = n }
}
func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}
func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}

// NewRandomForest initializes the forest with sensible defaults.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains every tree concurrently on its own bootstrap sample.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	p, err := checkXY("randomforest", X, y)
	if err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		return errors.Errorf("randomforest: n_estimators must be positive, got %d", rf.NEstimators)
	}
	n := len(X)
	rf.classes = uniqueSorted(y)
	rf.nFeatures = p
	rf.Trees = make([]*DecisionTreeClassifier, rf.NEstimators)

	var wg sync.WaitGroup
	errs := make([]error, rf.NEstimators)
	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seed := rf.RandomState + int64(i)
			rnd := rand.New(rand.NewSource(seed))

			Xs, ys := X, y
			if rf.Bootstrap {
				Xs = make([][]float64, n)
				ys = make([]int, n)
				for j := 0; j < n; j++ {
					k := rnd.Intn(n)
					Xs[j], ys[j] = X[k], y[k]
				}
			}
			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(rf.MinSamplesLeaf),
				WithMaxFeatures(rf.MaxFeatures),
				WithRandomState(seed),
			)
			if err := tree.Fit(Xs, ys); err != nil {
				errs[i] = errors.Wrapf(err, "randomforest: tree %d", i)
				return
			}
			rf.Trees[i] = tree
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Fitted reports whether Fit has completed.
func (rf *RandomForest) Fitted() bool { return len(rf.Trees) > 0 && rf.Trees[0] != nil }

// Classes returns the sorted class labels seen during Fit.
func (rf *RandomForest) Classes() []int { return append([]int(nil), rf.classes...) }

// NFeatures returns the number of features seen during Fit.
func (rf *RandomForest) NFeatures() int { return rf.nFeatures }

// PredictProba averages tree probabilities, re-aligned to the forest's
// classes since a bootstrap sample may miss some labels.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	k := len(rf.classes)
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, k)
	}
	if len(rf.Trees) == 0 {
		return out
	}

	perTree := make([][][]float64, len(rf.Trees))
	var wg sync.WaitGroup
	for ti, tree := range rf.Trees {
		wg.Add(1)
		go func(ti int, t *DecisionTreeClassifier) {
			defer wg.Done()
			perTree[ti] = t.PredictProba(X)
		}(ti, tree)
	}
	wg.Wait()

	for ti, tree := range rf.Trees {
		cols := make([]int, len(tree.classes))
		for c, lab := range tree.classes {
			cols[c] = indexOf(rf.classes, lab)
		}
		for i, row := range perTree[ti] {
			for c, v := range row {
				out[i][cols[c]] += v
			}
		}
	}
	scale := 1 / float64(len(rf.Trees))
	for i := range out {
		for c := range out[i] {
			out[i][c] *= scale
		}
	}
	return out
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	if len(rf.classes) == 0 {
		return out
	}
	proba := rf.PredictProba(X)
	for i, row := range proba {
		out[i] = rf.classes[argmaxFloat(row)]
	}
	return out
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
