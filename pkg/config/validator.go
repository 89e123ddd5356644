package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/jparrax/datascience-middle-course/pkg/colormap"
	"github.com/jparrax/datascience-middle-course/pkg/dataprep"
	"github.com/jparrax/datascience-middle-course/pkg/display"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks c and returns all problems found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateData()...)
	errs = append(errs, c.validateModel()...)
	errs = append(errs, c.validateBoundary()...)
	errs = append(errs, c.validateScatter()...)
	errs = append(errs, c.validateOutput()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateData() []ValidationError {
	var errs []ValidationError
	d := c.Data
	for _, col := range []struct{ field, name string }{
		{"data.x_column", d.XCol},
		{"data.y_column", d.YCol},
		{"data.target_column", d.Target},
	} {
		if col.name == "" {
			errs = append(errs, ValidationError{col.field, col.name, "must not be empty"})
		}
	}
	if d.TestRatio < 0 || d.TestRatio >= 1 {
		errs = append(errs, ValidationError{"data.test_ratio", d.TestRatio, "must be in [0, 1)"})
	}
	if !slices.Contains(dataprep.Strategies(), dataprep.Strategy(d.Impute)) {
		errs = append(errs, ValidationError{"data.impute", d.Impute, "must be none, mean, median or mode"})
	}
	if d.Path == "" {
		if d.Blobs.Samples <= 0 {
			errs = append(errs, ValidationError{"data.blobs.samples", d.Blobs.Samples, "must be positive"})
		}
		if d.Blobs.Std <= 0 {
			errs = append(errs, ValidationError{"data.blobs.std", d.Blobs.Std, "must be positive"})
		}
		for i, ctr := range d.Blobs.Centers {
			if len(ctr) != 2 {
				errs = append(errs, ValidationError{fmt.Sprintf("data.blobs.centers[%d]", i), ctr, "must have two coordinates"})
			}
		}
	}
	return errs
}

func (c *Config) validateModel() []ValidationError {
	var errs []ValidationError
	m := c.Model
	if !slices.Contains([]string{"tree", "forest"}, m.Kind) {
		errs = append(errs, ValidationError{"model.kind", m.Kind, "must be tree or forest"})
	}
	if m.MaxDepth < 0 {
		errs = append(errs, ValidationError{"model.max_depth", m.MaxDepth, "must be >= 0 (0 = unlimited)"})
	}
	if m.MinSamplesSplit < 2 {
		errs = append(errs, ValidationError{"model.min_samples_split", m.MinSamplesSplit, "must be >= 2"})
	}
	if math.IsNaN(m.MinImpurityDecrease) || m.MinImpurityDecrease < 0 {
		errs = append(errs, ValidationError{"model.min_impurity_decrease", m.MinImpurityDecrease, "must be >= 0"})
	}
	if m.MinSamplesLeaf < 1 {
		errs = append(errs, ValidationError{"model.min_samples_leaf", m.MinSamplesLeaf, "must be >= 1"})
	}
	if !slices.Contains([]string{"gini", "entropy"}, m.Criterion) {
		errs = append(errs, ValidationError{"model.criterion", m.Criterion, "must be gini or entropy"})
	}
	if m.Kind == "forest" && m.NEstimators < 1 {
		errs = append(errs, ValidationError{"model.n_estimators", m.NEstimators, "must be >= 1"})
	}
	if m.CVFolds == 1 || m.CVFolds < 0 {
		errs = append(errs, ValidationError{"model.cv_folds", m.CVFolds, "must be 0 (off) or >= 2"})
	}
	if m.SavePath != "" && m.Kind != "tree" {
		errs = append(errs, ValidationError{"model.save_path", m.SavePath, "only trees can be saved"})
	}
	if m.LoadPath != "" && m.Kind != "tree" {
		errs = append(errs, ValidationError{"model.load_path", m.LoadPath, "only trees can be loaded"})
	}
	return errs
}

func (c *Config) validateBoundary() []ValidationError {
	var errs []ValidationError
	b := c.Boundary
	if !slices.Contains(colormap.Names(), b.Colormap) {
		errs = append(errs, ValidationError{"boundary.cmap", b.Colormap, "unknown colour map"})
	}
	if math.IsNaN(b.Alpha) || b.Alpha < 0 || b.Alpha > 1 {
		errs = append(errs, ValidationError{"boundary.alpha", b.Alpha, "must be in [0, 1]"})
	}
	if b.GridResolution < 2 {
		errs = append(errs, ValidationError{"boundary.grid_resolution", b.GridResolution, "must be >= 2"})
	}
	if b.Eps < 0 {
		errs = append(errs, ValidationError{"boundary.eps", b.Eps, "must be >= 0"})
	}
	responses := []string{string(display.ResponseAuto), string(display.ResponsePredict), string(display.ResponseProba)}
	if !slices.Contains(responses, b.ResponseMethod) {
		errs = append(errs, ValidationError{"boundary.response_method", b.ResponseMethod, "must be one of " + strings.Join(responses, ", ")})
	}
	methods := []string{string(display.PlotContourf), string(display.PlotPcolormesh), string(display.PlotContour)}
	if !slices.Contains(methods, b.PlotMethod) {
		errs = append(errs, ValidationError{"boundary.plot_method", b.PlotMethod, "must be one of " + strings.Join(methods, ", ")})
	}
	return errs
}

func (c *Config) validateScatter() []ValidationError {
	var errs []ValidationError
	if c.Scatter.MarkerSize <= 0 {
		errs = append(errs, ValidationError{"scatter.marker_size", c.Scatter.MarkerSize, "must be positive"})
	}
	if !slices.Contains(colormap.Names(), c.Scatter.Colormap) {
		errs = append(errs, ValidationError{"scatter.cmap", c.Scatter.Colormap, "unknown colour map"})
	}
	return errs
}

func (c *Config) validateOutput() []ValidationError {
	var errs []ValidationError
	if c.Output.Path == "" {
		errs = append(errs, ValidationError{"output.path", c.Output.Path, "must not be empty"})
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, ValidationError{"output.width/height", fmt.Sprintf("%vx%v", c.Output.Width, c.Output.Height), "must be positive"})
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		return []ValidationError{{"logging.level", c.Logging.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")}}
	}
	return nil
}
