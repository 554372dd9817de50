package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolox-0/ff-sih-backup/core/factory"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/internal/eventbus"
)

var testNow = time.Date(2024, 12, 9, 5, 0, 0, 0, time.UTC)

type jobsFunc func(context.Context) ([]model.JobCard, error)

func (f jobsFunc) FetchJobCards(ctx context.Context) ([]model.JobCard, error) { return f(ctx) }

type certsFunc func(context.Context) ([]CertificateRecord, error)

func (f certsFunc) FetchCertificates(ctx context.Context) ([]CertificateRecord, error) { return f(ctx) }

type overridesFunc func(context.Context) ([]Override, error)

func (f overridesFunc) FetchOverrides(ctx context.Context) ([]Override, error) { return f(ctx) }

func staticJobs(cards ...model.JobCard) JobCardSource {
	return jobsFunc(func(context.Context) ([]model.JobCard, error) { return cards, nil })
}

func staticCerts(recs ...CertificateRecord) CertificateSource {
	return certsFunc(func(context.Context) ([]CertificateRecord, error) { return recs, nil })
}

func staticOverrides(os ...Override) OverrideSource {
	return overridesFunc(func(context.Context) ([]Override, error) { return os, nil })
}

func failing[T any](msg string) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		var zero T
		return zero, errors.New(msg)
	}
}

func smallRoster() Roster {
	return Roster{Size: 5, IDPrefix: "TS-", BaseMileage: 45000, MileageStep: 1000}
}

func newTestManager(jobs JobCardSource, certs CertificateSource, overrides OverrideSource, opts ...Option) *Manager {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewManager(smallRoster(), jobs, certs, overrides, opts...)
}

func TestRosterSeed(t *testing.T) {
	fleet := DefaultRoster().Seed()
	require.Len(t, fleet, 25)
	assert.Equal(t, "TS-001", fleet[0].ID)
	assert.Equal(t, "TS-025", fleet[24].ID)
	assert.Equal(t, 46000.0, fleet[0].CurrentMileage)
	assert.Equal(t, 70000.0, fleet[24].CurrentMileage)
	for _, ts := range fleet {
		assert.Equal(t, model.StatusStandby, ts.CurrentStatus)
		assert.NotNil(t, ts.JobCards)
		assert.NotNil(t, ts.FitnessCertificates)
	}
}

func TestRefreshMergesSources(t *testing.T) {
	m := newTestManager(
		staticJobs(
			model.JobCard{ID: "WO-2024-001", TrainsetID: "TS-003", Status: model.JobOpen, Priority: 2},
			model.JobCard{ID: "WO-2024-009", TrainsetID: "TS-099", Status: model.JobOpen, Priority: 1},
		),
		staticCerts(
			CertificateRecord{TrainsetID: "TS-001", Certificate: model.FitnessCertificate{Type: model.CertTelecom, IsValid: true, ExpiryDate: testNow.AddDate(0, 0, 180)}},
		),
		staticOverrides(Override{TrainsetID: "TS-005", StatusOverride: model.StatusMaintenance, Reason: "Operator reported unusual noise"}),
	)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Len())
	assert.Empty(t, snap.SourceErrors)
	assert.Equal(t, testNow, snap.RefreshedAt)

	ts3, ok := snap.Trainset("TS-003")
	require.True(t, ok)
	require.Len(t, ts3.JobCards, 1)
	assert.False(t, ts3.IsServiceReady(testNow))

	ts1, _ := snap.Trainset("TS-001")
	assert.Len(t, ts1.FitnessCertificates, 1)

	ts5, _ := snap.Trainset("TS-005")
	assert.Equal(t, model.StatusMaintenance, ts5.CurrentStatus)

	_, ok = snap.Trainset("TS-099")
	assert.False(t, ok)
}

func TestRefreshToleratesFailingSources(t *testing.T) {
	m := newTestManager(
		jobsFunc(failing[[]model.JobCard]("maximo unreachable")),
		certsFunc(failing[[]CertificateRecord]("sensor gateway down")),
		staticOverrides(Override{TrainsetID: "TS-002", StatusOverride: model.StatusCleaning}),
	)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, snap.Len())
	assert.Equal(t, map[string]string{
		SourceJobCards:     "maximo unreachable",
		SourceCertificates: "sensor gateway down",
	}, snap.SourceErrors)

	for _, ts := range snap.Fleet() {
		assert.NotNil(t, ts.JobCards)
		assert.NotNil(t, ts.FitnessCertificates)
		assert.Empty(t, ts.JobCards)
	}
	ts2, _ := snap.Trainset("TS-002")
	assert.Equal(t, model.StatusCleaning, ts2.CurrentStatus)
}

func TestRefreshRecoversPanickingSource(t *testing.T) {
	m := newTestManager(jobsFunc(func(context.Context) ([]model.JobCard, error) {
		panic("boom")
	}), nil, nil)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snap.SourceErrors[SourceJobCards], "boom")
	assert.Equal(t, 5, snap.Len())
}

func TestRefreshPublishesEvent(t *testing.T) {
	bus := eventbus.NewTyped[RefreshEvent]()
	defer bus.Close()
	sub := bus.Subscribe()

	m := newTestManager(nil, certsFunc(failing[[]CertificateRecord]("down")), nil, WithBus(bus))
	_, err := m.Refresh(context.Background())
	require.NoError(t, err)

	select {
	case ev := <-sub:
		assert.Equal(t, 5, ev.Trainsets)
		assert.Contains(t, ev.SourceErrors, SourceCertificates)
	case <-time.After(time.Second):
		t.Fatal("no refresh event published")
	}
}

func TestRefreshCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestManager(nil, nil, nil).Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotFleetIsCopy(t *testing.T) {
	m := newTestManager(nil, nil, nil)
	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)

	fleet := snap.Fleet()
	fleet[0].CurrentStatus = model.StatusOutOfService
	fleet[0].JobCards = append(fleet[0].JobCards, model.JobCard{ID: "X"})

	again, _ := snap.Trainset("TS-001")
	assert.Equal(t, model.StatusStandby, again.CurrentStatus)
	assert.Empty(t, again.JobCards)
}

func TestManagerCurrentAndTrainset(t *testing.T) {
	calls := 0
	m := newTestManager(jobsFunc(func(context.Context) ([]model.JobCard, error) {
		calls++
		return nil, nil
	}), nil, nil)

	_, ok := m.Snapshot()
	assert.False(t, ok)

	_, err := m.Current(context.Background())
	require.NoError(t, err)
	_, err = m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	ts, err := m.Trainset(context.Background(), "TS-004")
	require.NoError(t, err)
	assert.Equal(t, 49000.0, ts.CurrentMileage)

	_, err = m.Trainset(context.Background(), "TS-404")
	assert.ErrorIs(t, err, ErrUnknownTrainset)
}

func TestSnapshotStats(t *testing.T) {
	m := newTestManager(staticJobs(model.JobCard{ID: "WO-1", TrainsetID: "TS-001", Status: model.JobOpen, Priority: 1}), nil, nil)
	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)

	st := snap.Stats(testNow)
	assert.Equal(t, 5, st.Trainsets)
	assert.Equal(t, 4, st.Ready)
	assert.Equal(t, 1, st.OpenJobCards)
	assert.Equal(t, 5, st.ByStatus[string(model.StatusStandby)])
	assert.InDelta(t, 48000.0, st.MeanMileage, 1e-9)
	assert.Zero(t, st.ActiveBranding)
}

func TestSnapshotStatsBranding(t *testing.T) {
	fleet := smallRoster().Seed()
	fleet[0].BrandingContract = &model.BrandingContract{ContractID: "BR-1", StartDate: testNow.AddDate(0, -1, 0), EndDate: testNow.AddDate(0, 1, 0)}
	fleet[1].BrandingContract = &model.BrandingContract{ContractID: "BR-2", StartDate: testNow.AddDate(0, -3, 0), EndDate: testNow.AddDate(0, 0, -1)}
	fleet[2].BrandingContract = &model.BrandingContract{ContractID: "BR-3"}

	st := NewSnapshot(fleet, testNow, nil).Stats(testNow)
	assert.Equal(t, 2, st.ActiveBranding)
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "memory", c.Overrides.Type)
	assert.Equal(t, 30, c.RefreshTimeoutSeconds)

	c.JobCards.Type = "carrier-pigeon"
	assert.NoError(t, c.Validate())
	c.RefreshTimeoutSeconds = -1
	assert.Error(t, c.Validate())

	_, err := NewSources(Config{JobCards: factory.ModuleConfig{Type: "carrier-pigeon"}})
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

type closingJobs struct {
	closed int
}

func (c *closingJobs) FetchJobCards(context.Context) ([]model.JobCard, error) { return nil, nil }

func (c *closingJobs) Close() error {
	c.closed++
	return nil
}

var lastClosing *closingJobs

func init() {
	_ = RegisterJobCardSource("closing-test", func(map[string]any) (JobCardSource, error) {
		lastClosing = &closingJobs{}
		return lastClosing, nil
	})
	_ = RegisterOverrideStore("broken-test", func(map[string]any) (OverrideStore, error) {
		return nil, errors.New("dial tcp 127.0.0.1:6379: connection refused")
	})
}

func TestNewSourcesClosesOnFailure(t *testing.T) {
	srcs, err := NewSources(Config{
		JobCards:  factory.ModuleConfig{Type: "closing-test"},
		Overrides: factory.ModuleConfig{Type: "broken-test"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, srcs.JobCards)
	require.NotNil(t, lastClosing)
	assert.Equal(t, 1, lastClosing.closed)

	srcs, err = NewSources(Config{JobCards: factory.ModuleConfig{Type: "closing-test"}})
	require.NoError(t, err)
	assert.Zero(t, lastClosing.closed)
	require.NoError(t, srcs.Close())
	assert.Equal(t, 1, lastClosing.closed)
}
