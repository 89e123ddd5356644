package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jparrax/datascience-middle-course/pkg/data"
)

func newBlobsCmd() *cobra.Command {
	var (
		n    int
		seed int64
		std  float64
		out  string
	)
	cmd := &cobra.Command{
		Use:   "blobs",
		Short: "Write a synthetic two-blob classification CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := data.MakeBlobs(n, data.DefaultCenters, std, seed)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return data.WriteCSV(cmd.OutOrStdout(), f)
			}
			if err := data.SaveCSV(out, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", f.Len(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 300, "number of samples")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&std, "std", 1.0, "cluster standard deviation")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output CSV (default stdout)")
	return cmd
}
