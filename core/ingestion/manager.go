package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/logger"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/monitoring"
	"github.com/hydrolox-0/ff-sih-backup/internal/eventbus"
)

// ErrUnknownTrainset is returned for ids outside the roster.
var ErrUnknownTrainset = errors.New("unknown trainset")

// RefreshEvent is published on the bus after every refresh.
type RefreshEvent struct {
	Trainsets    int
	SourceErrors map[string]string
	Duration     time.Duration
	Time         time.Time
}

// Manager builds fleet snapshots from the three ingestion sources. A failing
// source contributes nothing; the snapshot always holds the full roster.
type Manager struct {
	roster    Roster
	jobs      JobCardSource
	certs     CertificateSource
	overrides OverrideSource

	bus     *eventbus.TypedBus[RefreshEvent]
	log     logger.Logger
	now     func() time.Time
	timeout time.Duration

	mu   sync.RWMutex
	last Snapshot
}

// Option configures a Manager.
type Option func(*Manager)

// WithBus publishes a RefreshEvent after each refresh.
func WithBus(bus *eventbus.TypedBus[RefreshEvent]) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTimeout bounds a whole refresh. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// NewManager creates a Manager. Any source may be nil, in which case it
// contributes nothing.
func NewManager(roster Roster, jobs JobCardSource, certs CertificateSource, overrides OverrideSource, opts ...Option) *Manager {
	roster.SetDefaults()
	m := &Manager{
		roster:    roster,
		jobs:      jobs,
		certs:     certs,
		overrides: overrides,
		log:       nopLogger{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Roster returns the configured roster.
func (m *Manager) Roster() Roster { return m.roster }

type fetchResult struct {
	jobs      []model.JobCard
	certs     []CertificateRecord
	overrides []Override
	errs      map[string]error
}

// Refresh fetches all sources concurrently and merges them into a new
// snapshot, which also becomes the manager's current snapshot.
func (m *Manager) Refresh(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	start := m.now()

	res := m.fetch(ctx)
	fleet := m.merge(res)

	sourceErrors := make(map[string]string, len(res.errs))
	for name, err := range res.errs {
		sourceErrors[name] = err.Error()
		m.log.Warnf("ingestion source %s failed: %v", name, err)
		monitoring.CaptureException(err, map[string]string{"component": "ingestion", "source": name})
	}

	snap := NewSnapshot(fleet, m.now(), sourceErrors)
	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()

	ev := RefreshEvent{
		Trainsets:    snap.Len(),
		SourceErrors: snap.SourceErrors,
		Duration:     snap.RefreshedAt.Sub(start),
		Time:         snap.RefreshedAt,
	}
	if m.bus != nil {
		m.bus.Publish(ev)
	}
	m.log.Infof("data refresh complete: %d trainsets, %d failed sources", snap.Len(), len(sourceErrors))
	return snap, nil
}

func (m *Manager) fetch(ctx context.Context) fetchResult {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res = fetchResult{errs: make(map[string]error)}
	)
	fail := func(name string, err error) {
		mu.Lock()
		res.errs[name] = err
		mu.Unlock()
	}
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(name, fmt.Errorf("panic: %v", r))
				}
			}()
			if err := fn(); err != nil {
				fail(name, err)
			}
		}()
	}

	if m.jobs != nil {
		run(SourceJobCards, func() (err error) {
			res.jobs, err = m.jobs.FetchJobCards(ctx)
			return err
		})
	}
	if m.certs != nil {
		run(SourceCertificates, func() (err error) {
			res.certs, err = m.certs.FetchCertificates(ctx)
			return err
		})
	}
	if m.overrides != nil {
		run(SourceOverrides, func() (err error) {
			res.overrides, err = m.overrides.FetchOverrides(ctx)
			return err
		})
	}
	wg.Wait()

	// A failed source contributes nothing, even partial data.
	if _, ok := res.errs[SourceJobCards]; ok {
		res.jobs = nil
	}
	if _, ok := res.errs[SourceCertificates]; ok {
		res.certs = nil
	}
	if _, ok := res.errs[SourceOverrides]; ok {
		res.overrides = nil
	}
	return res
}

func (m *Manager) merge(res fetchResult) []model.Trainset {
	fleet := m.roster.Seed()
	index := make(map[string]int, len(fleet))
	for i, t := range fleet {
		index[t.ID] = i
	}

	dropped := 0
	for _, jc := range res.jobs {
		i, ok := index[jc.TrainsetID]
		if !ok {
			dropped++
			continue
		}
		if err := jc.Validate(); err != nil {
			m.log.Warnf("skipping job card: %v", err)
			continue
		}
		fleet[i].JobCards = append(fleet[i].JobCards, jc)
	}
	for _, rec := range res.certs {
		i, ok := index[rec.TrainsetID]
		if !ok {
			dropped++
			continue
		}
		fleet[i].FitnessCertificates = append(fleet[i].FitnessCertificates, rec.Certificate)
	}
	for _, o := range res.overrides {
		i, ok := index[o.TrainsetID]
		if !ok {
			dropped++
			continue
		}
		if o.StatusOverride.Valid() {
			fleet[i].CurrentStatus = o.StatusOverride
		}
	}
	if dropped > 0 {
		m.log.Debugw("dropped records for unknown trainsets", map[string]any{"count": dropped})
	}
	return fleet
}

// Snapshot returns the last snapshot and whether one exists.
func (m *Manager) Snapshot() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, !m.last.IsZero()
}

// Current returns the last snapshot, refreshing first if there is none.
func (m *Manager) Current(ctx context.Context) (Snapshot, error) {
	if snap, ok := m.Snapshot(); ok {
		return snap, nil
	}
	return m.Refresh(ctx)
}

// Trainset returns one trainset from the current snapshot.
func (m *Manager) Trainset(ctx context.Context, id string) (model.Trainset, error) {
	snap, err := m.Current(ctx)
	if err != nil {
		return model.Trainset{}, err
	}
	t, ok := snap.Trainset(id)
	if !ok {
		return model.Trainset{}, fmt.Errorf("%w: %s", ErrUnknownTrainset, id)
	}
	return t, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
