package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jparrax/datascience-middle-course/pkg/app"
)

func (rt *runtime) newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Train a classifier and write its decision boundary figure",
		Long: `Train a decision tree on the configured data, draw its decision surface
and overlay the training points.

Without --data a two-blob synthetic dataset is generated. Flags override the
config file and TREEVIZ_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: rt.runPlot,
	}

	f := cmd.Flags()
	f.String("data", "", "headed CSV file with the feature and class columns")
	f.StringP("out", "o", "", "output image (.png, .svg, .pdf, ...)")
	f.String("cmap", "", "boundary colour map, e.g. RdBu_r, coolwarm")
	f.Float64("alpha", 0, "boundary opacity in [0, 1]")
	f.Int("max-depth", 0, "tree depth limit (0 = unlimited)")
	f.Float64("marker-size", 0, "scatter marker area in points²")
	f.String("model", "", "kind of classifier: tree or forest")
	f.String("load-model", "", "plot a previously saved tree instead of training")
	f.String("save-model", "", "write the trained tree to this file")

	for key, flag := range map[string]string{
		"data.path":           "data",
		"output.path":         "out",
		"boundary.cmap":       "cmap",
		"boundary.alpha":      "alpha",
		"model.max_depth":     "max-depth",
		"scatter.marker_size": "marker-size",
		"model.kind":          "model",
		"model.load_path":     "load-model",
		"model.save_path":     "save-model",
	} {
		_ = rt.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func (rt *runtime) runPlot(cmd *cobra.Command, _ []string) error {
	cfg, log, err := rt.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	res, err := app.Run(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", res.OutputPath)
	fmt.Fprintf(out, "  classes:        %v\n", res.Classes)
	fmt.Fprintf(out, "  train accuracy: %.3f (%d rows)\n", res.TrainAccuracy, res.TrainSize)
	if res.TestSize > 0 {
		fmt.Fprintf(out, "  test accuracy:  %.3f (%d rows)\n", res.TestAccuracy, res.TestSize)
	}
	if res.CVAccuracy > 0 {
		fmt.Fprintf(out, "  cv accuracy:    %.3f\n", res.CVAccuracy)
	}
	if res.ModelPath != "" {
		fmt.Fprintf(out, "  model:          %s\n", res.ModelPath)
	}
	return nil
}
