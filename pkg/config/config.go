package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/dataprep"
	"github.com/jparrax/datascience-middle-course/pkg/display"
)

// EnvPrefix prefixes environment overrides, e.g. TREEVIZ_BOUNDARY_ALPHA.
const EnvPrefix = "TREEVIZ"

// Config is the complete treeviz configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data" yaml:"data"`
	Model    ModelConfig    `mapstructure:"model" yaml:"model"`
	Boundary BoundaryConfig `mapstructure:"boundary" yaml:"boundary"`
	Scatter  ScatterConfig  `mapstructure:"scatter" yaml:"scatter"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// DataConfig selects the training data.
type DataConfig struct {
	// Path of a headed CSV file; empty generates Gaussian blobs
	Path   string `mapstructure:"path" yaml:"path"`
	XCol   string `mapstructure:"x_column" yaml:"x_column"`
	YCol   string `mapstructure:"y_column" yaml:"y_column"`
	Target string `mapstructure:"target_column" yaml:"target_column"`
	// TestRatio is the held-out fraction used to report test accuracy
	TestRatio float64 `mapstructure:"test_ratio" yaml:"test_ratio"`
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	// Impute fills missing feature values: none, mean, median or mode
	Impute string      `mapstructure:"impute" yaml:"impute"`
	Blobs  BlobsConfig `mapstructure:"blobs" yaml:"blobs"`
}

// BlobsConfig controls the synthetic dataset.
type BlobsConfig struct {
	Samples int         `mapstructure:"samples" yaml:"samples"`
	Centers [][]float64 `mapstructure:"centers" yaml:"centers"`
	Std     float64     `mapstructure:"std" yaml:"std"`
}

// ModelConfig controls the classifier.
type ModelConfig struct {
	// Kind is "tree" or "forest"
	Kind                string  `mapstructure:"kind" yaml:"kind"`
	MaxDepth            int     `mapstructure:"max_depth" yaml:"max_depth"`
	MinSamplesSplit     int     `mapstructure:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf      int     `mapstructure:"min_samples_leaf" yaml:"min_samples_leaf"`
	MinImpurityDecrease float64 `mapstructure:"min_impurity_decrease" yaml:"min_impurity_decrease"`
	Criterion           string  `mapstructure:"criterion" yaml:"criterion"`
	NEstimators         int     `mapstructure:"n_estimators" yaml:"n_estimators"`
	Seed                int64   `mapstructure:"seed" yaml:"seed"`
	// CVFolds > 1 reports k-fold cross-validated accuracy before the final fit
	CVFolds int `mapstructure:"cv_folds" yaml:"cv_folds"`
	// LoadPath reads a saved tree instead of training one
	LoadPath string `mapstructure:"load_path" yaml:"load_path"`
	// SavePath writes the trained tree
	SavePath string `mapstructure:"save_path" yaml:"save_path"`
}

// BoundaryConfig controls the decision boundary layer.
type BoundaryConfig struct {
	Colormap       string  `mapstructure:"cmap" yaml:"cmap"`
	Alpha          float64 `mapstructure:"alpha" yaml:"alpha"`
	GridResolution int     `mapstructure:"grid_resolution" yaml:"grid_resolution"`
	Eps            float64 `mapstructure:"eps" yaml:"eps"`
	ResponseMethod string  `mapstructure:"response_method" yaml:"response_method"`
	PlotMethod     string  `mapstructure:"plot_method" yaml:"plot_method"`
}

// ScatterConfig controls the training data overlay.
type ScatterConfig struct {
	// MarkerSize is the marker area in points²
	MarkerSize float64 `mapstructure:"marker_size" yaml:"marker_size"`
	Colormap   string  `mapstructure:"cmap" yaml:"cmap"`
}

// OutputConfig controls the written figure.
type OutputConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Title string `mapstructure:"title" yaml:"title"`
	// Width and Height are in inches
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
	// File, when set, also writes logs to a rotated file
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration that reproduces the classic
// "tree boundary over training blobs" figure.
func Default() *Config {
	centers := make([][]float64, len(data.DefaultCenters))
	for i, c := range data.DefaultCenters {
		centers[i] = []float64{c[0], c[1]}
	}
	return &Config{
		Data: DataConfig{
			XCol:      data.FeatureX,
			YCol:      data.FeatureY,
			Target:    data.ClassColumn,
			TestRatio: 0.25,
			Seed:      0,
			Impute:    string(dataprep.None),
			Blobs: BlobsConfig{
				Samples: 300,
				Centers: centers,
				Std:     1.0,
			},
		},
		Model: ModelConfig{
			Kind:            "tree",
			MaxDepth:        2,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			Criterion:       "gini",
			NEstimators:     100,
		},
		Boundary: BoundaryConfig{
			Colormap:       "RdBu_r",
			Alpha:          0.5,
			GridResolution: display.DefaultGridResolution,
			Eps:            display.DefaultEps,
			ResponseMethod: string(display.ResponseAuto),
			PlotMethod:     string(display.PlotContourf),
		},
		Scatter: ScatterConfig{
			MarkerSize: 50,
			Colormap:   "RdBu_r",
		},
		Output: OutputConfig{
			Path:   "decision_boundary.png",
			Title:  "Decision tree boundary",
			Width:  6,
			Height: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default with v so env vars and config files
// can override individual keys.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.x_column", d.Data.XCol)
	v.SetDefault("data.y_column", d.Data.YCol)
	v.SetDefault("data.target_column", d.Data.Target)
	v.SetDefault("data.test_ratio", d.Data.TestRatio)
	v.SetDefault("data.seed", d.Data.Seed)
	v.SetDefault("data.impute", d.Data.Impute)
	v.SetDefault("data.blobs.samples", d.Data.Blobs.Samples)
	v.SetDefault("data.blobs.centers", d.Data.Blobs.Centers)
	v.SetDefault("data.blobs.std", d.Data.Blobs.Std)

	v.SetDefault("model.kind", d.Model.Kind)
	v.SetDefault("model.max_depth", d.Model.MaxDepth)
	v.SetDefault("model.min_samples_split", d.Model.MinSamplesSplit)
	v.SetDefault("model.min_samples_leaf", d.Model.MinSamplesLeaf)
	v.SetDefault("model.min_impurity_decrease", d.Model.MinImpurityDecrease)
	v.SetDefault("model.criterion", d.Model.Criterion)
	v.SetDefault("model.n_estimators", d.Model.NEstimators)
	v.SetDefault("model.seed", d.Model.Seed)
	v.SetDefault("model.cv_folds", d.Model.CVFolds)
	v.SetDefault("model.load_path", d.Model.LoadPath)
	v.SetDefault("model.save_path", d.Model.SavePath)

	v.SetDefault("boundary.cmap", d.Boundary.Colormap)
	v.SetDefault("boundary.alpha", d.Boundary.Alpha)
	v.SetDefault("boundary.grid_resolution", d.Boundary.GridResolution)
	v.SetDefault("boundary.eps", d.Boundary.Eps)
	v.SetDefault("boundary.response_method", d.Boundary.ResponseMethod)
	v.SetDefault("boundary.plot_method", d.Boundary.PlotMethod)

	v.SetDefault("scatter.marker_size", d.Scatter.MarkerSize)
	v.SetDefault("scatter.cmap", d.Scatter.Colormap)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.title", d.Output.Title)
	v.SetDefault("output.width", d.Output.Width)
	v.SetDefault("output.height", d.Output.Height)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.file", d.Logging.File)
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration as YAML, creating parent
// directories. An existing file is left untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("config: %s already exists", path)
	}
	b, err := yaml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "config: marshal defaults")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "config: create directory")
		}
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "config: write %s", path)
}
