package scenarios

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario fixtures found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadDecodesModifications(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "custom.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Kind != scenario.KindCustom {
		t.Fatalf("unexpected kind %q", sc.Kind)
	}
	if len(sc.Params.Modifications) != 2 {
		t.Fatalf("expected 2 modifications, got %d", len(sc.Params.Modifications))
	}
	if _, ok := sc.Params.Modifications[1].Mutation.(scenario.SetMileage); !ok {
		t.Fatalf("expected SetMileage, got %T", sc.Params.Modifications[1].Mutation)
	}
}

func TestToModel(t *testing.T) {
	bay, days := 3, 10
	def := TrainsetDef{
		ID:                   "TS-009",
		Mileage:              42000,
		Bay:                  &bay,
		DaysSinceMaintenance: &days,
		ExpiredCertificates:  []model.CertificateType{model.CertTelecom},
		JobCards:             []model.JobCard{{ID: "WO-1", Priority: 3}},
	}
	ts := def.ToModel(Now)

	if ts.CurrentStatus != model.StatusStandby || ts.CarCount != model.DefaultCarCount {
		t.Fatalf("unexpected defaults: %+v", ts)
	}
	if len(ts.FitnessCertificates) != 3 {
		t.Fatalf("expected 3 certificates, got %d", len(ts.FitnessCertificates))
	}
	telecom, _ := ts.Certificate(model.CertTelecom)
	if telecom.ValidAt(Now) {
		t.Error("telecom certificate should be expired")
	}
	signalling, _ := ts.Certificate(model.CertSignalling)
	if !signalling.ValidAt(Now) {
		t.Error("signalling certificate should be valid")
	}
	if ts.IsServiceReady(Now) {
		t.Error("trainset with an expired certificate must not be service-ready")
	}
	if got := Now.Sub(*ts.LastMaintenanceDate); got != 240*time.Hour {
		t.Errorf("unexpected maintenance age %v", got)
	}
	if ts.JobCards[0].TrainsetID != "TS-009" || ts.JobCards[0].Status != model.JobOpen {
		t.Errorf("job card not normalised: %+v", ts.JobCards[0])
	}
}

func TestExecuteDoesNotShareFleet(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "weather_impact.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	res := Execute(sc, induction.DefaultConfig(), Now)
	if res.Demand != 2 || res.ScenarioDemand != 2 {
		t.Fatalf("unexpected demand %d/%d", res.Demand, res.ScenarioDemand)
	}
	for _, d := range sc.Fleet {
		if len(d.JobCards) != 0 {
			t.Fatalf("fixture %s was modified", d.ID)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	cases := map[string]string{
		"syntax":    ":",
		"no name":   "demand: 1\nfleet:\n  - id: TS-001\n",
		"no fleet":  "name: empty\ndemand: 1\n",
		"duplicate": "name: dup\nfleet:\n  - id: TS-001\n  - id: TS-001\n",
		"cert type": "name: cert\nfleet:\n  - id: TS-001\n    expired_certificates: [brakes]\n",
		"bad op":    "name: op\nkind: custom\nparameters:\n  modifications:\n    - trainset_id: TS-001\n      op: paint\nfleet:\n  - id: TS-001\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}
