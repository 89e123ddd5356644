package data

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVNumericAndEncoded(t *testing.T) {
	in := "Feature #0,Feature #1,Classes\n1.5,2,b\n-1,,a\n0,3.25,b\n"
	f, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{FeatureX, FeatureY, ClassColumn}, f.Names())
	assert.Equal(t, 3, f.Len())

	x, err := f.Column(FeatureX)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -1, 0}, x)

	y, err := f.Column(FeatureY)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(y[1]))

	labels, err := f.Labels(ClassColumn)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, labels)
	assert.Equal(t, []string{"a", "b"}, f.Categories(ClassColumn))
	assert.Nil(t, f.Categories(FeatureX))
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = ReadCSV(strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	assert.ErrorIs(t, err, ErrRaggedRow)
}

func TestFrameColumnNotFound(t *testing.T) {
	f, err := NewFrame([]string{"a"}, [][]float64{{1, 2}})
	require.NoError(t, err)

	_, err = f.Column("Classes")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = f.Matrix("a", "missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = f.Labels("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.False(t, f.Has("missing"))
	assert.True(t, f.Has("a"))
}

func TestNewFrameValidation(t *testing.T) {
	_, err := NewFrame([]string{"a", "b"}, [][]float64{{1}})
	assert.Error(t, err)
	_, err = NewFrame([]string{"a", "a"}, [][]float64{{1}, {2}})
	assert.Error(t, err)
	_, err = NewFrame([]string{"a", "b"}, [][]float64{{1}, {2, 3}})
	assert.ErrorIs(t, err, ErrRaggedRow)
}

func TestFrameMatrixAndRows(t *testing.T) {
	f, err := NewFrame([]string{"a", "b", "c"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	m, err := f.Matrix("c", "a")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 5.0, m.At(0, 0))
	assert.Equal(t, 2.0, m.At(1, 1))

	rows, err := f.Rows("a", "b")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, rows)

	_, err = f.Labels("a")
	require.NoError(t, err)
	g, err := NewFrame([]string{"x"}, [][]float64{{0.5}})
	require.NoError(t, err)
	_, err = g.Labels("x")
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestCSVRoundTripKeepsLabels(t *testing.T) {
	in := "x,label\n1,cat\n2,dog\n"
	f, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f))
	assert.Equal(t, in, buf.String())
}

func TestSaveLoadCSV(t *testing.T) {
	f, err := MakeBlobs(20, nil, 0.5, 1)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "blobs.csv")
	require.NoError(t, SaveCSV(path, f))

	g, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, f.Names(), g.Names())
	want, _ := f.Column(FeatureX)
	got, _ := g.Column(FeatureX)
	assert.Equal(t, want, got)
}

func TestMakeBlobs(t *testing.T) {
	centers := [][2]float64{{-5, 0}, {5, 0}, {0, 5}}
	f, err := MakeBlobs(100, centers, 0.1, 42)
	require.NoError(t, err)
	assert.Equal(t, 100, f.Len())

	labels, err := f.Labels(ClassColumn)
	require.NoError(t, err)
	counts := map[int]int{}
	for _, l := range labels {
		counts[l]++
	}
	assert.Equal(t, map[int]int{0: 34, 1: 33, 2: 33}, counts)

	x, _ := f.Column(FeatureX)
	y, _ := f.Column(FeatureY)
	for i, l := range labels {
		assert.InDelta(t, centers[l][0], x[i], 1.0)
		assert.InDelta(t, centers[l][1], y[i], 1.0)
	}

	again, err := MakeBlobs(100, centers, 0.1, 42)
	require.NoError(t, err)
	x2, _ := again.Column(FeatureX)
	assert.Equal(t, x, x2)
}

func TestMakeBlobsErrors(t *testing.T) {
	_, err := MakeBlobs(0, nil, 1, 0)
	assert.Error(t, err)
	_, err = MakeBlobs(10, nil, 0, 0)
	assert.Error(t, err)
}

func TestTrainTestSplit(t *testing.T) {
	f, err := MakeBlobs(50, nil, 1, 3)
	require.NoError(t, err)

	train, test, err := TrainTestSplit(f, 0.2, 9)
	require.NoError(t, err)
	assert.Equal(t, 40, train.Len())
	assert.Equal(t, 10, test.Len())

	_, _, err = TrainTestSplit(f, 1, 9)
	assert.Error(t, err)

	empty, _ := NewFrame(nil, nil)
	_, _, err = TrainTestSplit(empty, 0.2, 9)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestKFoldSplit(t *testing.T) {
	folds, err := KFoldSplit(10, 3, 1)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	seen := map[int]bool{}
	for _, fold := range folds {
		for _, i := range fold {
			assert.False(t, seen[i])
			seen[i] = true
		}
	}
	assert.Len(t, seen, 10)

	_, err = KFoldSplit(3, 5, 1)
	assert.Error(t, err)
}
