package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydrolox-0/ff-sih-backup/app"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List trainsets with their readiness and composite score",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service) error {
		snap, err := svc.Refresh(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		scorer := svc.Scorer()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TRAINSET\tSTATUS\tREADY\tMILEAGE\tOPEN JOBS\tSCORE")
		for _, t := range snap.Fleet() {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%.0f\t%d\t%.3f\n",
				t.ID, t.CurrentStatus, t.IsServiceReady(now), t.CurrentMileage, t.OpenJobCards(), scorer.Score(t, now))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for src, msg := range snap.SourceErrors {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: source %s failed: %s\n", src, msg)
		}
		return nil
	})
}
