package scenarios

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hydrolox-0/ff-sih-backup/core/induction"
	coremetrics "github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
	"github.com/hydrolox-0/ff-sih-backup/infra/metrics"
)

// Now is the instant every fixture is evaluated at.
var Now = time.Date(2024, 12, 9, 5, 0, 0, 0, time.UTC)

// Execute runs the fixture through the scenario engine at now.
func Execute(sc *Scenario, cfg induction.Config, now time.Time) scenario.Result {
	engine := scenario.NewEngine(induction.NewPolicy(cfg))
	return engine.RunAt(sc.FleetAt(now), sc.Kind, sc.Params, sc.Demand, now)
}

// RunScenario executes sc with the default scorer and checks the outcome and
// the recorded scenario metrics against its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	res := Execute(sc, induction.DefaultConfig(), Now)
	if err := sink.RecordScenario(coremetrics.ScenarioEvent{
		ScenarioID:  res.ID,
		Kind:        string(res.Kind),
		Changes:     res.Comparison.TotalChanges,
		Differences: res.Comparison.Differences,
		Time:        res.Timestamp,
	}); err != nil {
		t.Fatalf("record scenario: %v", err)
	}

	if len(res.Baseline) != len(sc.Fleet) || len(res.Scenario) != len(sc.Fleet) {
		t.Fatalf("scenario %s: expected %d decisions per run, got %d/%d",
			sc.Name, len(sc.Fleet), len(res.Baseline), len(res.Scenario))
	}
	checkCounts(t, sc.Name, "baseline", sc.Expected.Baseline, res.Comparison.BaselineCounts)
	checkCounts(t, sc.Name, "scenario", sc.Expected.Scenario, res.Comparison.ScenarioCounts)

	if n := sc.Expected.Changes; n != nil && *n != res.Comparison.TotalChanges {
		t.Errorf("scenario %s expected %d changes, got %d (%v)", sc.Name, *n, res.Comparison.TotalChanges, res.Comparison.Changed)
	}
	got := make(map[string]model.Status, len(res.Comparison.Changed))
	for _, c := range res.Comparison.Changed {
		got[c.TrainsetID] = c.ScenarioStatus
	}
	for id, want := range sc.Expected.Changed {
		st, ok := got[id]
		if !ok {
			t.Errorf("scenario %s expected %s to change to %s, it did not change", sc.Name, id, want)
			continue
		}
		if st != want {
			t.Errorf("scenario %s expected %s to change to %s, got %s", sc.Name, id, want, st)
		}
	}

	expected := fmt.Sprintf(`
# HELP induction_scenario_changes Trainsets whose recommendation changed in the last scenario run
# TYPE induction_scenario_changes gauge
induction_scenario_changes %d
`, res.Comparison.TotalChanges)
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "induction_scenario_changes"); err != nil {
		t.Errorf("scenario %s metrics: %v", sc.Name, err)
	}
}

func checkCounts(t *testing.T, name, run string, want Counts, got map[model.Status]int) {
	t.Helper()
	for st, n := range want.byStatus() {
		if got[st] != n {
			t.Errorf("scenario %s %s expected %d %s, got %d", name, run, n, st, got[st])
		}
	}
}
