package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydrolox-0/ff-sih-backup/app"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
	"github.com/hydrolox-0/ff-sih-backup/qa/scenarios"
)

var (
	simulateFile   string
	simulateKind   string
	simulateParams string
	simulateDemand int
	simulateJSON   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compare a what-if scenario against the baseline allocation",
	Long: `Runs a scenario either against the fleet described in a scenario file
(--file) or against the fleet built from the configured sources (--kind and
--params).`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateFile, "file", "f", "", "scenario file with its own fleet")
	f.StringVarP(&simulateKind, "kind", "k", "", "scenario type, overrides the file")
	f.StringVarP(&simulateParams, "params", "p", "", "scenario parameters as a JSON object")
	f.IntVarP(&simulateDemand, "demand", "d", 0, "baseline service demand, overrides the file or config")
	f.BoolVar(&simulateJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	var params scenario.Params
	if simulateParams != "" {
		if err := json.Unmarshal([]byte(simulateParams), &params); err != nil {
			return fmt.Errorf("parameters: %w", err)
		}
	}
	demandSet := cmd.Flags().Changed("demand")
	if demandSet && simulateDemand < 0 {
		return fmt.Errorf("demand must not be negative")
	}

	var res scenario.Result
	if simulateFile != "" {
		sc, err := scenarios.Load(simulateFile)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if simulateKind != "" {
			sc.Kind = scenario.Kind(simulateKind)
		}
		if simulateParams != "" {
			sc.Params = params
		}
		if demandSet {
			sc.Demand = simulateDemand
		}
		res = scenarios.Execute(sc, cfg.Optimization.Induction(), time.Now())
	} else {
		if simulateKind == "" {
			return fmt.Errorf("either --file or --kind is required")
		}
		err := withService(func(ctx context.Context, svc *app.Service) error {
			demand := simulateDemand
			if !demandSet {
				demand = svc.DefaultDemand()
			}
			var err error
			res, err = svc.Simulate(ctx, scenario.Kind(simulateKind), params, demand)
			return err
		})
		if err != nil {
			return err
		}
	}

	if simulateJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return writeComparison(cmd.OutOrStdout(), res)
}

func writeComparison(w io.Writer, res scenario.Result) error {
	c := res.Comparison
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tBASELINE\tSCENARIO\tDIFF")
	for _, st := range model.RecommendedStatuses {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%+d\n", st, c.BaselineCounts[st], c.ScenarioCounts[st], c.Differences[st])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s (demand %d -> %d): %d changed, %d unchanged\n",
		res.Kind, res.Demand, res.ScenarioDemand, c.TotalChanges, c.Unchanged)
	for _, ch := range c.Changed {
		if _, err := fmt.Fprintf(w, "  %s: %s -> %s\n", ch.TrainsetID, ch.BaselineStatus, ch.ScenarioStatus); err != nil {
			return err
		}
	}
	return nil
}
