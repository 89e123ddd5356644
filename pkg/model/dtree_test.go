package model

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBlobs returns well separated clusters labelled 0 and 1.
func twoBlobs(n int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		c := i % 2
		cx := -3.0
		if c == 1 {
			cx = 3.0
		}
		X[i] = []float64{cx + rnd.NormFloat64()*0.5, rnd.NormFloat64()}
		y[i] = c
	}
	return X, y
}

func TestDecisionTreeFitSeparable(t *testing.T) {
	X, y := twoBlobs(200, 1)
	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))

	assert.True(t, tree.Fitted())
	assert.Equal(t, []int{0, 1}, tree.Classes())
	assert.Equal(t, 2, tree.NFeatures())
	assert.Equal(t, 1.0, Accuracy(y, tree.Predict(X)))
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, 2, tree.NLeaves())
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	// x0 < 0 is class 0; the right half splits again on x1
	X := [][]float64{
		{-1, -1}, {-2, -1}, {-1, 1}, {-2, 1}, {-1, -2}, {-2, -2}, {-1, 2}, {-2, 2},
		{1, -1}, {2, -1}, {1, -2}, {2, -2},
		{1, 1}, {2, 1}, {1, 2}, {2, 2},
	}
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}

	stump := NewDecisionTreeClassifier(WithMaxDepth(1))
	require.NoError(t, stump.Fit(X, y))
	assert.Equal(t, 1, stump.Depth())
	assert.Equal(t, 0.75, Accuracy(y, stump.Predict(X)))

	full := NewDecisionTreeClassifier()
	require.NoError(t, full.Fit(X, y))
	assert.Equal(t, 1.0, Accuracy(y, full.Predict(X)))
	assert.Equal(t, 2, full.Depth())
	assert.Equal(t, 3, full.NLeaves())
}

func TestDecisionTreeClassesSortedAndProbaAligned(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {10}, {11}, {12}}
	y := []int{7, 7, 7, 3, 3, 3}
	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))

	assert.Equal(t, []int{3, 7}, tree.Classes())
	proba := tree.PredictProba([][]float64{{0.5}, {11.5}})
	assert.Equal(t, []float64{0, 1}, proba[0])
	assert.Equal(t, []float64{1, 0}, proba[1])
	assert.Equal(t, []int{7, 3}, tree.Predict([][]float64{{0.5}, {11.5}}))
}

func TestDecisionTreeMissingValues(t *testing.T) {
	X := [][]float64{{0}, {1}, {math.NaN()}, {10}, {11}, {12}}
	y := []int{0, 0, 0, 1, 1, 1}
	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 1.0, Accuracy(y, tree.Predict(X)))
}

func TestDecisionTreeMissingFollowsTrainedSide(t *testing.T) {
	// the NaN row belongs with the smaller left child
	X := [][]float64{{0}, {math.NaN()}, {10}, {11}, {12}, {13}}
	y := []int{0, 0, 1, 1, 1, 1}
	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []int{0}, tree.Predict([][]float64{{math.NaN()}}))

	b, err := tree.MarshalBinary()
	require.NoError(t, err)
	loaded := NewDecisionTreeClassifier()
	require.NoError(t, loaded.UnmarshalBinary(b))
	assert.Equal(t, []int{0}, loaded.Predict([][]float64{{math.NaN()}}))
}

func TestDecisionTreeFitErrors(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []int
		opts []Option
	}{
		{name: "empty", X: nil, y: nil},
		{name: "length mismatch", X: [][]float64{{1}}, y: []int{1, 2}},
		{name: "ragged", X: [][]float64{{1, 2}, {1}}, y: []int{0, 1}},
		{name: "criterion", X: [][]float64{{1}}, y: []int{0}, opts: []Option{WithCriterion("log_loss2")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDecisionTreeClassifier(tt.opts...).Fit(tt.X, tt.y)
			assert.Error(t, err)
		})
	}
}

func TestDecisionTreeEntropyAndMinLeaf(t *testing.T) {
	X, y := twoBlobs(100, 2)
	tree := NewDecisionTreeClassifier(WithCriterion("entropy"), WithMinSamplesLeaf(5))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 1.0, Accuracy(y, tree.Predict(X)))
}

func TestDecisionTreeUnfittedPredictsUniform(t *testing.T) {
	tree := NewDecisionTreeClassifier()
	assert.False(t, tree.Fitted())
	assert.Equal(t, [][]float64{{1}}, tree.PredictProba([][]float64{{0}}))
	assert.Equal(t, []int{0, 0}, tree.Predict([][]float64{{0}, {1}}))
	_, err := tree.PruneReducedError([][]float64{{0}}, []int{0})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestDecisionTreePruneReducedError(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	// label noise makes a fully grown tree overfit
	X, y := twoBlobs(300, 4)
	for i := range y {
		if rnd.Float64() < 0.1 {
			y[i] = 1 - y[i]
		}
	}
	Xval, yval := twoBlobs(100, 5)

	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))
	before := Accuracy(yval, tree.Predict(Xval))
	leaves := tree.NLeaves()

	pruned, err := tree.PruneReducedError(Xval, yval)
	require.NoError(t, err)
	assert.Greater(t, pruned, 0)
	assert.Less(t, tree.NLeaves(), leaves)
	assert.GreaterOrEqual(t, Accuracy(yval, tree.Predict(Xval)), before)
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	X, y := twoBlobs(120, 6)
	tree := NewDecisionTreeClassifier(WithMaxDepth(3))
	require.NoError(t, tree.Fit(X, y))

	path := filepath.Join(t.TempDir(), "tree.gob")
	require.NoError(t, SaveTree(path, tree))

	loaded, err := LoadTree(path)
	require.NoError(t, err)
	assert.Equal(t, tree.Classes(), loaded.Classes())
	assert.Equal(t, tree.NFeatures(), loaded.NFeatures())
	assert.Equal(t, tree.MaxDepth, loaded.MaxDepth)
	assert.Equal(t, tree.Predict(X), loaded.Predict(X))
	assert.Equal(t, tree.PredictProba(X), loaded.PredictProba(X))
}

func TestSaveTreeUnfitted(t *testing.T) {
	err := SaveTree(filepath.Join(t.TempDir(), "x.gob"), NewDecisionTreeClassifier())
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestUnmarshalRejectsOutOfRangeFeature(t *testing.T) {
	snap := treeSnapshot{
		Classes:   []int{0, 1},
		NFeatures: 2,
		Nodes: []nodeSnapshot{
			{Feature: 5, Threshold: 0.5, Probas: []float64{0.5, 0.5}, Left: 1, Right: 2},
			{Leaf: true, Probas: []float64{1, 0}, Left: -1, Right: -1},
			{Leaf: true, Probas: []float64{0, 1}, Left: -1, Right: -1},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(&snap))

	tree := NewDecisionTreeClassifier()
	err := tree.UnmarshalBinary(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 5")
	assert.False(t, tree.Fitted())

	snap.Nodes[0].Feature = 1
	buf.Reset()
	require.NoError(t, gob.NewEncoder(&buf).Encode(&snap))
	require.NoError(t, tree.UnmarshalBinary(buf.Bytes()))
	assert.Equal(t, []int{0, 1}, tree.Predict([][]float64{{9, 0}, {9, 1}}))
}
