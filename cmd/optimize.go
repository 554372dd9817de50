package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hydrolox-0/ff-sih-backup/app"
	"github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/pkg/export"
)

var (
	optimizeDemand int
	optimizeFormat string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Allocate the current fleet and print the induction plan",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().IntVarP(&optimizeDemand, "demand", "d", 0, "trainsets required in revenue service (default from config)")
	optimizeCmd.Flags().StringVarP(&optimizeFormat, "format", "o", "table", "output format: table, json or csv")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if optimizeDemand < 0 {
		return fmt.Errorf("demand must not be negative")
	}
	if !validFormat(optimizeFormat) {
		return fmt.Errorf("unsupported output format %q", optimizeFormat)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		demand := optimizeDemand
		if !cmd.Flags().Changed("demand") {
			demand = svc.DefaultDemand()
		}
		plan, err := svc.Optimize(ctx, demand)
		if err != nil {
			return err
		}
		if optimizeFormat == "table" {
			return writePlan(cmd.OutOrStdout(), plan)
		}
		return export.Write(cmd.OutOrStdout(), optimizeFormat, plan)
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func validFormat(f string) bool {
	if f == "table" {
		return true
	}
	for _, known := range export.Formats {
		if f == known {
			return true
		}
	}
	return false
}

func writePlan(w io.Writer, plan induction.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRAINSET\tSTATUS\tSCORE\tREASON")
	for _, d := range plan.Decisions {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\n", d.TrainsetID, d.RecommendedStatus, d.PriorityScore, strings.Join(d.Reasoning, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := plan.Summary
	_, err := fmt.Fprintf(w, "\nrun %s: demand %d, service %d, standby %d, maintenance %d, shortfall %d\n",
		plan.RunID, s.Demand, s.Service, s.Standby, s.Maintenance, s.Shortfall)
	return err
}
