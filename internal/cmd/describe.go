package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file.csv> [column...]",
		Short: "Print summary statistics of a CSV dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := data.LoadCSV(args[0])
			if err != nil {
				return err
			}
			summaries, err := stats.Describe(f, args[1:]...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(summaries))
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows\n", f.Len())
			return nil
		},
	}
}

func summaryTable(summaries []stats.Summary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COLUMN", "COUNT", "MISSING", "MEAN", "STD", "MIN", "MEDIAN", "MAX").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range summaries {
		t.Row(s.Column, strconv.Itoa(s.Count), strconv.Itoa(s.Missing),
			num(s.Mean), num(s.Std), num(s.Min), num(s.Median), num(s.Max))
	}
	return t.Render()
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }
