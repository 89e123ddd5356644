// Package app wires data loading, training and rendering into the single
// "decision boundary plus training scatter" pipeline.
package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/jparrax/datascience-middle-course/pkg/config"
	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/dataprep"
	"github.com/jparrax/datascience-middle-course/pkg/display"
	"github.com/jparrax/datascience-middle-course/pkg/model"
	"github.com/jparrax/datascience-middle-course/pkg/stats"
)

// Result summarises one pipeline run.
type Result struct {
	OutputPath    string
	ModelPath     string
	TrainSize     int
	TestSize      int
	Classes       []int
	TrainAccuracy float64
	// TestAccuracy is 0 when no rows were held out
	TestAccuracy float64
	// CVAccuracy is the mean k-fold accuracy, 0 when cross-validation is off
	CVAccuracy float64
	// Confusion is indexed [true][predicted] over Classes on the test rows
	Confusion [][]int
	Response  display.ResponseMethod
	Elapsed   time.Duration
}

// Run executes the pipeline described by cfg.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	res := &Result{}

	frame, err := loadFrame(cfg.Data, log)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{cfg.Data.XCol, cfg.Data.YCol, cfg.Data.Target} {
		if !frame.Has(col) {
			return nil, errors.Wrapf(data.ErrColumnNotFound, "app: %q", col)
		}
	}
	frame, err = prepare(frame, cfg.Data, log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	train, test, err := data.TrainTestSplit(frame, cfg.Data.TestRatio, cfg.Data.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "app: split")
	}
	res.TrainSize, res.TestSize = train.Len(), test.Len()
	log.Debug("split data", zap.Int("train", res.TrainSize), zap.Int("test", res.TestSize))

	Xtrain, ytrain, err := xy(train, cfg.Data)
	if err != nil {
		return nil, err
	}

	if cfg.Model.CVFolds > 1 && cfg.Model.LoadPath == "" {
		res.CVAccuracy, err = crossValidate(ctx, cfg.Model, Xtrain, ytrain)
		if err != nil {
			return nil, err
		}
		log.Info("cross-validated", zap.Int("folds", cfg.Model.CVFolds), zap.Float64("accuracy", res.CVAccuracy))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clf, err := classifier(cfg.Model, Xtrain, ytrain, log)
	if err != nil {
		return nil, err
	}
	res.Classes = clf.Classes()
	res.TrainAccuracy = model.Accuracy(ytrain, clf.Predict(Xtrain))
	if test.Len() > 0 {
		Xtest, ytest, err := xy(test, cfg.Data)
		if err != nil {
			return nil, err
		}
		pred := clf.Predict(Xtest)
		res.TestAccuracy = model.Accuracy(ytest, pred)
		res.Confusion = model.ConfusionMatrix(ytest, pred, res.Classes)
		log.Debug("test confusion matrix", zap.Any("matrix", res.Confusion))
	}
	log.Info("classifier ready",
		zap.String("kind", cfg.Model.Kind),
		zap.Ints("classes", res.Classes),
		zap.Float64("train_accuracy", res.TrainAccuracy),
		zap.Float64("test_accuracy", res.TestAccuracy),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	X, err := train.Matrix(cfg.Data.XCol, cfg.Data.YCol)
	if err != nil {
		return nil, err
	}
	disp, err := display.FromEstimator(clf, X,
		display.WithColormap(cfg.Boundary.Colormap),
		display.WithAlpha(cfg.Boundary.Alpha),
		display.WithGridResolution(cfg.Boundary.GridResolution),
		display.WithEps(cfg.Boundary.Eps),
		display.WithResponseMethod(display.ResponseMethod(cfg.Boundary.ResponseMethod)),
		display.WithPlotMethod(display.PlotMethod(cfg.Boundary.PlotMethod)),
		display.WithFeatureNames(cfg.Data.XCol, cfg.Data.YCol),
	)
	if err != nil {
		return nil, errors.Wrap(err, "app: decision boundary")
	}
	res.Response = disp.Method

	ax, err := display.Scatter(train, display.ScatterSpec{
		X:        cfg.Data.XCol,
		Y:        cfg.Data.YCol,
		C:        cfg.Data.Target,
		Size:     cfg.Scatter.MarkerSize,
		Colormap: cfg.Scatter.Colormap,
		Ax:       disp.Ax,
	})
	if err != nil {
		return nil, errors.Wrap(err, "app: scatter")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Output.Title != "" {
		ax.SetTitle(cfg.Output.Title)
	}
	w, h := vg.Length(cfg.Output.Width)*vg.Inch, vg.Length(cfg.Output.Height)*vg.Inch
	if err := ax.Save(cfg.Output.Path, w, h); err != nil {
		return nil, err
	}
	res.OutputPath = cfg.Output.Path
	log.Info("saved figure", zap.String("path", res.OutputPath), zap.String("response", string(res.Response)))

	if cfg.Model.SavePath != "" {
		tree, ok := clf.(*model.DecisionTreeClassifier)
		if !ok {
			return nil, errors.Errorf("app: only trees can be saved, got %s", cfg.Model.Kind)
		}
		if err := model.SaveTree(cfg.Model.SavePath, tree); err != nil {
			return nil, err
		}
		res.ModelPath = cfg.Model.SavePath
		log.Info("saved model", zap.String("path", res.ModelPath))
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func loadFrame(dc config.DataConfig, log *zap.Logger) (*data.Frame, error) {
	if dc.Path != "" {
		f, err := data.LoadCSV(dc.Path)
		if err != nil {
			return nil, err
		}
		log.Info("loaded data", zap.String("path", dc.Path), zap.Int("rows", f.Len()))
		return f, nil
	}

	centers := make([][2]float64, 0, len(dc.Blobs.Centers))
	for i, c := range dc.Blobs.Centers {
		if len(c) != 2 {
			return nil, errors.Errorf("app: blob center %d has %d coordinates", i, len(c))
		}
		centers = append(centers, [2]float64{c[0], c[1]})
	}
	f, err := data.MakeBlobs(dc.Blobs.Samples, centers, dc.Blobs.Std, dc.Seed)
	if err != nil {
		return nil, err
	}
	log.Info("generated blobs", zap.Int("rows", f.Len()), zap.Int("centers", len(centers)))
	return f, nil
}

// prepare imputes missing features and logs a per-column summary.
func prepare(f *data.Frame, dc config.DataConfig, log *zap.Logger) (*data.Frame, error) {
	f, filled, err := dataprep.Impute(f, dataprep.Strategy(dc.Impute), dc.XCol, dc.YCol)
	if err != nil {
		return nil, err
	}
	if filled > 0 {
		log.Info("imputed missing features", zap.String("strategy", dc.Impute), zap.Int("cells", filled))
	}
	if log.Core().Enabled(zap.DebugLevel) {
		summaries, err := stats.Describe(f, dc.XCol, dc.YCol, dc.Target)
		if err != nil {
			return nil, err
		}
		for _, s := range summaries {
			log.Debug("column summary",
				zap.String("column", s.Column),
				zap.Int("count", s.Count),
				zap.Int("missing", s.Missing),
				zap.Float64("mean", s.Mean),
				zap.Float64("std", s.Std),
				zap.Float64("min", s.Min),
				zap.Float64("max", s.Max),
			)
		}
	}
	return f, nil
}

func xy(f *data.Frame, dc config.DataConfig) ([][]float64, []int, error) {
	X, err := f.Rows(dc.XCol, dc.YCol)
	if err != nil {
		return nil, nil, err
	}
	y, err := f.Labels(dc.Target)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

type fitter interface {
	model.Classifier
	Fit(X [][]float64, y []int) error
}

func newFitter(mc config.ModelConfig) fitter {
	if mc.Kind == "forest" {
		return model.NewRandomForest(
			model.WithNEstimators(mc.NEstimators),
			model.WithForestMaxDepth(mc.MaxDepth),
			model.WithForestMinSamplesSplit(mc.MinSamplesSplit),
			model.WithForestMinSamplesLeaf(mc.MinSamplesLeaf),
			model.WithForestRandomState(mc.Seed),
		)
	}
	return model.NewDecisionTreeClassifier(
		model.WithMaxDepth(mc.MaxDepth),
		model.WithMinSamplesSplit(mc.MinSamplesSplit),
		model.WithMinSamplesLeaf(mc.MinSamplesLeaf),
		model.WithMinImpurityDecrease(mc.MinImpurityDecrease),
		model.WithCriterion(mc.Criterion),
		model.WithRandomState(mc.Seed),
	)
}

func classifier(mc config.ModelConfig, X [][]float64, y []int, log *zap.Logger) (model.Classifier, error) {
	if mc.LoadPath != "" {
		tree, err := model.LoadTree(mc.LoadPath)
		if err != nil {
			return nil, err
		}
		if n := tree.NFeatures(); n != 2 {
			return nil, errors.Wrapf(display.ErrFeatureCount, "app: loaded model has %d features", n)
		}
		log.Info("loaded model", zap.String("path", mc.LoadPath), zap.Int("depth", tree.Depth()))
		return tree, nil
	}
	clf := newFitter(mc)
	if err := clf.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "app: fit")
	}
	if tree, ok := clf.(*model.DecisionTreeClassifier); ok {
		log.Debug("fitted tree", zap.Int("depth", tree.Depth()), zap.Int("leaves", tree.NLeaves()))
	}
	return clf, nil
}

// crossValidate returns the mean held-out accuracy over mc.CVFolds folds.
func crossValidate(ctx context.Context, mc config.ModelConfig, X [][]float64, y []int) (float64, error) {
	folds, err := data.KFoldSplit(len(X), mc.CVFolds, mc.Seed)
	if err != nil {
		return 0, errors.Wrap(err, "app: cross-validation")
	}
	var sum float64
	for k, held := range folds {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		out := make(map[int]bool, len(held))
		for _, i := range held {
			out[i] = true
		}
		var Xtr, Xte [][]float64
		var ytr, yte []int
		for i := range X {
			if out[i] {
				Xte, yte = append(Xte, X[i]), append(yte, y[i])
			} else {
				Xtr, ytr = append(Xtr, X[i]), append(ytr, y[i])
			}
		}
		clf := newFitter(mc)
		if err := clf.Fit(Xtr, ytr); err != nil {
			return 0, errors.Wrapf(err, "app: fold %d", k)
		}
		sum += model.Accuracy(yte, clf.Predict(Xte))
	}
	return sum / float64(len(folds)), nil
}
