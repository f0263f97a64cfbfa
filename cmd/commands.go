package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ptai/internal/report"
	"ptai/internal/stats"
)

func newListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the suburbs in the attribute table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range filterSuburbs(ds.Suburbs(), filter, ds.Names) {
				fmt.Fprintln(w, s)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only list suburbs containing this text")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var out outputs
	cmd := &cobra.Command{
		Use:   "show <suburb>",
		Short: "Show the dashboard for one suburb",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.render(cmd.Context(), cmd.OutOrStdout(), name, out)
		},
	}
	cmd.Flags().StringVar(&out.mapPath, "map", "", "write the boundary and centroid as GeoJSON to this path")
	cmd.Flags().StringVar(&out.xlsxPath, "xlsx", "", "write scores and correlations to this workbook")
	return cmd
}

func newCorrelationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "correlations",
		Short: "Show mode averages and their correlation with IRSD across all suburbs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			summary := stats.Summarize(ds.Attributes, a.policy)
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "%d suburbs, missing values handled %s\n\n", len(ds.Suburbs()), a.policy)
			for _, avg := range summary.Averages {
				if !avg.Defined() {
					fmt.Fprintf(w, "%-12s average undefined (%s)\n", avg.Column, avg.Reason)
					continue
				}
				fmt.Fprintf(w, "%-12s average %.2f over %d suburbs\n", avg.Column, avg.Mean, avg.N)
			}
			fmt.Fprintln(w)
			report.WriteCorrelations(w, summary.Correlations)
			return nil
		},
	}
}
