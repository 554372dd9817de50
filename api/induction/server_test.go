package induction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreinduction "github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/prediction"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
)

var testNow = time.Date(2024, 12, 9, 5, 0, 0, 0, time.UTC)

type fakeService struct {
	snap      ingestion.Snapshot
	fail      error
	overrides map[string]ingestion.Override

	lastDemand int
	lastKind   scenario.Kind
	lastParams scenario.Params
	refreshes  int
	outcomes   map[string]prediction.Outcome
}

func newFakeService() *fakeService {
	fleet := ingestion.DefaultRoster()
	fleet.Size = 3
	return &fakeService{
		snap:      ingestion.NewSnapshot(fleet.Seed(), testNow, nil),
		overrides: map[string]ingestion.Override{},
		outcomes:  map[string]prediction.Outcome{},
	}
}

func (f *fakeService) Fleet(context.Context) (ingestion.Snapshot, error) { return f.snap, f.fail }

func (f *fakeService) Trainset(_ context.Context, id string) (model.Trainset, error) {
	if f.fail != nil {
		return model.Trainset{}, f.fail
	}
	t, ok := f.snap.Trainset(id)
	if !ok {
		return model.Trainset{}, ingestion.ErrUnknownTrainset
	}
	return t, nil
}

func (f *fakeService) LastSnapshot() (ingestion.Snapshot, bool) { return f.snap, !f.snap.IsZero() }

func (f *fakeService) Refresh(context.Context) (ingestion.Snapshot, error) {
	f.refreshes++
	return f.snap, f.fail
}

func (f *fakeService) Optimize(_ context.Context, demand int) (coreinduction.Plan, error) {
	f.lastDemand = demand
	if f.fail != nil {
		return coreinduction.Plan{}, f.fail
	}
	p := coreinduction.NewPolicy(coreinduction.DefaultConfig())
	return p.PlanAt(f.snap.Fleet(), demand, testNow), nil
}

func (f *fakeService) Simulate(_ context.Context, kind scenario.Kind, params scenario.Params, demand int) (scenario.Result, error) {
	f.lastKind, f.lastParams, f.lastDemand = kind, params, demand
	if f.fail != nil {
		return scenario.Result{}, f.fail
	}
	e := scenario.NewEngine(coreinduction.NewPolicy(coreinduction.DefaultConfig()))
	return e.RunAt(f.snap.Fleet(), kind, params, demand, testNow), nil
}

func (f *fakeService) AddOverride(_ context.Context, o ingestion.Override) error {
	if _, ok := f.snap.Trainset(o.TrainsetID); !ok {
		return ingestion.ErrUnknownTrainset
	}
	f.overrides[o.TrainsetID] = o
	return nil
}

func (f *fakeService) RemoveOverride(_ context.Context, id string) (bool, error) {
	_, ok := f.overrides[id]
	delete(f.overrides, id)
	return ok, nil
}

func (f *fakeService) RecordOutcome(_ context.Context, id string, o prediction.Outcome) error {
	if _, ok := f.snap.Trainset(id); !ok {
		return ingestion.ErrUnknownTrainset
	}
	f.outcomes[id] = o
	return nil
}

func newTestServer(svc Service, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.DefaultDemand == 0 {
		opts.DefaultDemand = 2
	}
	return New(svc, opts).Router()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(newFakeService(), Options{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])
}

func TestListTrainsets(t *testing.T) {
	rec := do(t, newTestServer(newFakeService(), Options{}), http.MethodGet, "/api/v1/trainsets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]model.Trainset](t, rec)
	require.Len(t, got, 3)
	assert.Equal(t, "TS-001", got[0].ID)
}

func TestGetTrainset(t *testing.T) {
	fc := prediction.StaticForecaster{Forecasts: map[string]prediction.Forecast{
		"TS-002": {ServiceHours: 15, MaintenanceHours: 2, FailureProbability: 0.2},
	}}
	h := newTestServer(newFakeService(), Options{Forecaster: fc})

	rec := do(t, h, http.MethodGet, "/api/v1/trainsets/TS-002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		ID           string                       `json:"trainset_id"`
		ServiceReady bool                         `json:"service_ready"`
		Score        coreinduction.ScoreBreakdown `json:"score"`
		Forecast     prediction.Forecast          `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "TS-002", got.ID)
	assert.True(t, got.ServiceReady)
	assert.Equal(t, 1.0, got.Score.Readiness)
	assert.Greater(t, got.Score.Composite, 0.0)
	assert.Equal(t, 15.0, got.Forecast.ServiceHours)

	rec = do(t, h, http.MethodGet, "/api/v1/trainsets/TS-999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimize(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/optimize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.lastDemand)
	plan := decode[coreinduction.Plan](t, rec)
	assert.Len(t, plan.Decisions, 3)
	assert.Equal(t, 2, plan.Summary.Service)

	rec = do(t, h, http.MethodPost, "/api/v1/optimize?service_demand=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.lastDemand)
	assert.Equal(t, 2, decode[coreinduction.Plan](t, rec).Summary.Shortfall)

	for _, q := range []string{"abc", "-1"} {
		rec = do(t, h, http.MethodPost, "/api/v1/optimize?service_demand="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	svc.fail = errors.New("boom")
	rec = do(t, h, http.MethodPost, "/api/v1/optimize", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSimulate(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/simulate", map[string]any{
		"scenario_type":  "emergency_maintenance",
		"parameters":     map[string]any{"trainset_ids": []string{"TS-001"}},
		"service_demand": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scenario.KindEmergencyMaintenance, svc.lastKind)
	assert.Equal(t, []string{"TS-001"}, svc.lastParams.TrainsetIDs)
	assert.Equal(t, 3, svc.lastDemand)
	res := decode[scenario.Result](t, rec)
	assert.Equal(t, 1, res.Comparison.TotalChanges)
	require.Len(t, res.Comparison.Changed, 1)
	assert.Equal(t, model.StatusMaintenance, res.Comparison.Changed[0].ScenarioStatus)

	rec = do(t, h, http.MethodPost, "/api/v1/simulate", map[string]any{"scenario_type": "increased_demand"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.lastDemand)
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	h := newTestServer(newFakeService(), Options{})
	cases := map[string]any{
		"missing kind":    map[string]any{"parameters": map[string]any{}},
		"negative demand": map[string]any{"scenario_type": "custom", "service_demand": -2},
		"unknown op": map[string]any{"scenario_type": "custom", "parameters": map[string]any{
			"modifications": []any{map[string]any{"trainset_id": "TS-001", "op": "paint"}},
		}},
	}
	for name, body := range cases {
		rec := do(t, h, http.MethodPost, "/api/v1/simulate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManualOverride(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/manual-override", map[string]string{
		"trainset_id": "TS-001", "status_override": "maintenance", "reason": "Operator reported unusual noise", "override_by": "supervisor_001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	o := svc.overrides["TS-001"]
	assert.Equal(t, model.StatusMaintenance, o.StatusOverride)
	assert.Equal(t, testNow, o.Timestamp)

	rec = do(t, h, http.MethodPost, "/api/v1/manual-override", map[string]string{"trainset_id": "TS-001", "status_override": "parked"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/manual-override", map[string]string{"status_override": "standby"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/manual-override", map[string]string{"trainset_id": "TS-404"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/manual-override/TS-001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/v1/manual-override/TS-001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshAndStatus(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(svc, Options{Version: "1.0.0"})

	rec := do(t, h, http.MethodPost, "/api/v1/refresh-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshes)
	assert.Equal(t, 3.0, decode[map[string]any](t, rec)["trainsets_updated"])

	rec = do(t, h, http.MethodGet, "/api/v1/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.Equal(t, "operational", st["status"])
	assert.Equal(t, "1.0.0", st["version"])
	stats, ok := st["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3.0, stats["trainsets"])
	assert.Equal(t, 3.0, stats["service_ready"])
	assert.Equal(t, 47000.0, stats["mean_mileage"])
	assert.Equal(t, 0.0, stats["open_job_cards"])
	assert.Equal(t, map[string]any{"standby": 3.0}, stats["by_status"])

	svc.snap = ingestion.NewSnapshot(ingestion.DefaultRoster().Seed(), testNow, map[string]string{ingestion.SourceJobCards: "timeout"})
	rec = do(t, h, http.MethodGet, "/api/v1/system/status", nil)
	st = decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", st["status"])

	svc.fail = errors.New("down")
	rec = do(t, h, http.MethodPost, "/api/v1/refresh-data", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/trainsets", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("induction_allocations_total 1\n"))
	})
	rec := do(t, newTestServer(newFakeService(), Options{Metrics: metrics}), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "induction_allocations_total")

	rec = do(t, newTestServer(newFakeService(), Options{}), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeedback(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(svc, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/feedback", map[string]any{
		"trainset_id": "TS-003", "service_hours": 15.5, "maintenance_hours": 2, "failed": true,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, prediction.Outcome{ServiceHours: 15.5, MaintenanceHours: 2, Failed: true}, svc.outcomes["TS-003"])

	rec = do(t, h, http.MethodPost, "/api/v1/feedback", map[string]any{"trainset_id": "TS-404"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/feedback", map[string]any{"trainset_id": "TS-001", "service_hours": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/feedback", map[string]any{"service_hours": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
