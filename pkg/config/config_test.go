package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "RdBu_r", cfg.Boundary.Colormap)
	assert.Equal(t, 0.5, cfg.Boundary.Alpha)
	assert.Equal(t, 50.0, cfg.Scatter.MarkerSize)
	assert.Equal(t, "Feature #0", cfg.Data.XCol)
	assert.Equal(t, "Classes", cfg.Data.Target)
}

func TestLoadFromYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treeviz.yaml")
	yml := `
boundary:
  cmap: coolwarm
  alpha: 0.3
model:
  max_depth: 4
data:
  blobs:
    centers: [[0, 0], [2, 2], [4, 0]]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "coolwarm", cfg.Boundary.Colormap)
	assert.Equal(t, 0.3, cfg.Boundary.Alpha)
	assert.Equal(t, 4, cfg.Model.MaxDepth)
	assert.Equal(t, [][]float64{{0, 0}, {2, 2}, {4, 0}}, cfg.Data.Blobs.Centers)
	assert.Equal(t, 50.0, cfg.Scatter.MarkerSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TREEVIZ_SCATTER_MARKER_SIZE", "80")
	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.Scatter.MarkerSize)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Boundary.Alpha = 1.5
	cfg.Boundary.Colormap = "jet"
	cfg.Boundary.GridResolution = 1
	cfg.Boundary.PlotMethod = "surface"
	cfg.Scatter.MarkerSize = 0
	cfg.Model.Kind = "svm"
	cfg.Model.CVFolds = 1
	cfg.Data.TestRatio = 1
	cfg.Logging.Level = "trace"
	cfg.Data.Impute = "knn"

	errs := cfg.Validate()
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{
		"data.test_ratio",
		"data.impute",
		"model.kind",
		"model.cv_folds",
		"boundary.cmap",
		"boundary.alpha",
		"boundary.grid_resolution",
		"boundary.plot_method",
		"scatter.marker_size",
		"logging.level",
	}, fields)

	err := ValidationErrors(errs)
	assert.Contains(t, err.Error(), "10 validation errors")
}

func TestValidateTreeOnlyPersistence(t *testing.T) {
	cfg := Default()
	cfg.Model.Kind = "forest"
	cfg.Model.SavePath = "forest.gob"
	cfg.Model.LoadPath = "forest.gob"

	errs := cfg.Validate()
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"model.save_path", "model.load_path"}, fields)
}

func TestValidateTreeOptions(t *testing.T) {
	cfg := Default()
	cfg.Model.MinSamplesSplit = 1
	cfg.Model.MinImpurityDecrease = -0.1
	errs := cfg.Validate()
	require.Len(t, errs, 2)
	assert.Equal(t, "model.min_samples_split", errs[0].Field)
	assert.Equal(t, "model.min_impurity_decrease", errs[1].Field)
}

func TestValidateCSVSkipsBlobChecks(t *testing.T) {
	cfg := Default()
	cfg.Data.Path = "train.csv"
	cfg.Data.Blobs.Samples = 0
	assert.Empty(t, cfg.Validate())
}

func TestLoadReturnsValidationErrors(t *testing.T) {
	v := newViper()
	v.Set("boundary.alpha", -1)
	_, err := Load(v)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "boundary.alpha", verrs[0].Field)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "treeviz.yaml")
	require.NoError(t, WriteDefault(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default().Boundary, cfg.Boundary)
	assert.Equal(t, Default().Data.Blobs.Centers, cfg.Data.Blobs.Centers)

	assert.Error(t, WriteDefault(path))
}
