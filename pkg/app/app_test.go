package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jparrax/datascience-middle-course/pkg/config"
	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/display"
	"github.com/jparrax/datascience-middle-course/pkg/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Blobs.Samples = 120
	cfg.Boundary.GridResolution = 40
	cfg.Output.Path = filepath.Join(t.TempDir(), "boundary.png")
	cfg.Output.Width, cfg.Output.Height = 3, 3
	return cfg
}

func TestRunDefaultBlobs(t *testing.T) {
	cfg := testConfig(t)

	res, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.Path, res.OutputPath)
	assert.Equal(t, 90, res.TrainSize)
	assert.Equal(t, 30, res.TestSize)
	assert.Equal(t, []int{0, 1}, res.Classes)
	assert.Equal(t, display.ResponseProba, res.Response)
	assert.Greater(t, res.TrainAccuracy, 0.7)
	require.Len(t, res.Confusion, 2)
	total := 0
	for _, row := range res.Confusion {
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, res.TestSize, total)

	info, err := os.Stat(cfg.Output.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunFromCSVWithForestAndCV(t *testing.T) {
	dir := t.TempDir()
	f, err := data.MakeBlobs(90, [][2]float64{{-3, 0}, {3, 0}, {0, 4}}, 0.5, 3)
	require.NoError(t, err)
	csvPath := filepath.Join(dir, "train.csv")
	require.NoError(t, data.SaveCSV(csvPath, f))

	cfg := testConfig(t)
	cfg.Data.Path = csvPath
	cfg.Data.TestRatio = 0
	cfg.Model.Kind = "forest"
	cfg.Model.NEstimators = 5
	cfg.Model.MaxDepth = 0
	cfg.Model.CVFolds = 3

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 90, res.TrainSize)
	assert.Zero(t, res.TestSize)
	assert.Equal(t, []int{0, 1, 2}, res.Classes)
	assert.Equal(t, display.ResponsePredict, res.Response)
	assert.Greater(t, res.CVAccuracy, 0.9)
	assert.Greater(t, res.TrainAccuracy, 0.9)
}

func TestRunSavesAndReloadsTree(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.SavePath = filepath.Join(t.TempDir(), "tree.gob")

	first, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Model.SavePath, first.ModelPath)

	tree, err := model.LoadTree(cfg.Model.SavePath)
	require.NoError(t, err)
	assert.LessOrEqual(t, tree.Depth(), 2)

	cfg.Model.LoadPath, cfg.Model.SavePath = cfg.Model.SavePath, ""
	second, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, first.TrainAccuracy, second.TrainAccuracy)
	assert.Equal(t, first.TestAccuracy, second.TestAccuracy)
}

func TestRunErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.Target = "Target"
		_, err := Run(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, data.ErrColumnNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.Path = filepath.Join(t.TempDir(), "nope.csv")
		_, err := Run(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, testConfig(t), nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("save forest", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Model.Kind = "forest"
		cfg.Model.NEstimators = 3
		cfg.Model.SavePath = filepath.Join(t.TempDir(), "forest.gob")
		_, err := Run(context.Background(), cfg, nil)
		var verrs config.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "model.save_path", verrs[0].Field)
		assert.NoFileExists(t, cfg.Output.Path, "nothing is rendered for a rejected config")
	})

	t.Run("load model with wrong feature count", func(t *testing.T) {
		tree := model.NewDecisionTreeClassifier()
		require.NoError(t, tree.Fit(
			[][]float64{{0, 0, 0}, {0, 0, 1}, {0, 0, 2}, {0, 0, 3}},
			[]int{0, 0, 1, 1},
		))
		cfg := testConfig(t)
		cfg.Model.LoadPath = filepath.Join(t.TempDir(), "wide.gob")
		require.NoError(t, model.SaveTree(cfg.Model.LoadPath, tree))

		_, err := Run(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, display.ErrFeatureCount)
		assert.NoFileExists(t, cfg.Output.Path)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := Run(context.Background(), nil, nil)
		assert.Error(t, err)
	})
}

func TestRunHonoursTreeOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.MaxDepth = 0
	cfg.Model.MinImpurityDecrease = 0.5
	cfg.Model.SavePath = filepath.Join(t.TempDir(), "stump.gob")

	_, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	tree, err := model.LoadTree(cfg.Model.SavePath)
	require.NoError(t, err)
	assert.Zero(t, tree.Depth(), "no split on blob data decreases gini by 0.5")
	assert.Equal(t, 0.5, tree.MinImpurityDecrease)
}

func TestRunImputesMissingFeatures(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "gaps.csv")
	csv := "Feature #0,Feature #1,Classes\n" +
		"-2,-2,0\n-1.5,,0\n-2.5,-1,0\n,-2.2,0\n-1,-1.8,0\n" +
		"2,2,1\n1.5,2.5,1\n,1.8,1\n2.2,,1\n1,1.5,1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	cfg := testConfig(t)
	cfg.Data.Path = csvPath
	cfg.Data.TestRatio = 0
	cfg.Data.Impute = "median"

	log, err := zap.NewDevelopment()
	require.NoError(t, err)
	res, err := Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 10, res.TrainSize)
	assert.Equal(t, 1.0, res.TrainAccuracy)
}
