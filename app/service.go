package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apiinduction "github.com/hydrolox-0/ff-sih-backup/api/induction"
	"github.com/hydrolox-0/ff-sih-backup/config"
	"github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	coremetrics "github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	coremon "github.com/hydrolox-0/ff-sih-backup/core/monitoring"
	"github.com/hydrolox-0/ff-sih-backup/core/prediction"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
	"github.com/hydrolox-0/ff-sih-backup/infra/metrics"
	"github.com/hydrolox-0/ff-sih-backup/infra/monitoring"
	"github.com/hydrolox-0/ff-sih-backup/infra/mqtt"
	_ "github.com/hydrolox-0/ff-sih-backup/infra/sources"
	"github.com/hydrolox-0/ff-sih-backup/infra/tracing"
	"github.com/hydrolox-0/ff-sih-backup/internal/eventbus"
)

// Version is reported by the status endpoint.
var Version = "1.0.0"

// forecastMinSamples is the number of recorded outcomes before the
// forecaster switches from defaults to fitted values.
const forecastMinSamples = 10

// ErrOverridesDisabled is returned when no override store is configured.
var ErrOverridesDisabled = errors.New("manual overrides are disabled")

// Service wires ingestion, the allocation policy and the scenario engine to
// metrics, MQTT and the HTTP API.
type Service struct {
	cfg        *config.Config
	manager    *ingestion.Manager
	overrides  ingestion.OverrideStore
	closers    []func() error
	policy     *induction.Policy
	engine     *scenario.Engine
	forecaster *prediction.LearningForecaster
	sink       coremetrics.MetricsSink
	bus        *eventbus.TypedBus[ingestion.RefreshEvent]
	mqtt       *mqtt.Client
	plans      *mqtt.PlanPublisher
	log        logger.Logger
	now        func() time.Time

	closeOnce sync.Once
}

var _ apiinduction.Service = (*Service)(nil)

// Option customises a Service.
type Option func(*Service)

// WithClock fixes the evaluation instant of every run.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service from the configuration. Whatever was opened before a
// failing step is released before the error is returned.
func New(cfg *config.Config, opts ...Option) (_ *Service, err error) {
	closeLog, err := logger.Configure(cfg.Logging.Options())
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	s := &Service{cfg: cfg, log: logger.New("service"), now: time.Now, closers: []func() error{closeLog}}
	defer func() {
		if err != nil {
			if cerr := s.Close(); cerr != nil {
				s.log.Warnf("release after failed start: %v", cerr)
			}
		}
	}()
	for _, o := range opts {
		o(s)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	s.closers = append(s.closers, func() error { return shutdownTracing(context.Background()) })

	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	srcs, err := ingestion.NewSources(cfg.Ingestion)
	if err != nil {
		return nil, err
	}
	s.overrides = srcs.Overrides
	s.closers = append(s.closers, srcs.Close)

	s.bus = eventbus.NewTyped[ingestion.RefreshEvent]()
	var overrides ingestion.OverrideSource
	if srcs.Overrides != nil {
		overrides = srcs.Overrides
	}
	s.manager = ingestion.NewManager(cfg.Fleet, srcs.JobCards, srcs.Certificates, overrides,
		ingestion.WithBus(s.bus),
		ingestion.WithLogger(logger.New("ingestion")),
		ingestion.WithClock(s.now),
		ingestion.WithTimeout(time.Duration(cfg.Ingestion.RefreshTimeoutSeconds)*time.Second),
	)

	s.policy = induction.NewPolicy(cfg.Optimization.Induction(), induction.WithClock(s.now))
	s.engine = scenario.NewEngine(s.policy)
	s.forecaster = prediction.NewLearningForecaster(forecastMinSamples)

	if cfg.MQTT.Enabled {
		if err = s.connectMQTT(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) connectMQTT() error {
	client, err := mqtt.Connect(s.cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	s.mqtt = client
	s.plans = mqtt.NewPlanPublisher(client, s.cfg.MQTT.TopicPrefix)
	if s.overrides != nil {
		if err := mqtt.NewOverrideListener(s.overrides, s.cfg.MQTT.TopicPrefix).Start(client); err != nil {
			return err
		}
	}
	return nil
}

// Fleet returns the current snapshot, building one on first use.
func (s *Service) Fleet(ctx context.Context) (ingestion.Snapshot, error) {
	return s.manager.Current(ctx)
}

// Trainset returns one trainset of the current snapshot.
func (s *Service) Trainset(ctx context.Context, id string) (model.Trainset, error) {
	return s.manager.Trainset(ctx, id)
}

// LastSnapshot returns the snapshot of the last refresh, if any.
func (s *Service) LastSnapshot() (ingestion.Snapshot, bool) { return s.manager.Snapshot() }

// DefaultDemand is the configured service demand used when a request names
// none.
func (s *Service) DefaultDemand() int { return s.cfg.Optimization.DefaultServiceDemand }

// Scorer returns the scorer behind every allocation run.
func (s *Service) Scorer() induction.Scorer { return s.policy.Scorer() }

// Refresh rebuilds the snapshot from every source.
func (s *Service) Refresh(ctx context.Context) (ingestion.Snapshot, error) {
	return s.manager.Refresh(ctx)
}

// Optimize allocates the current fleet, records the run and broadcasts the
// plan when MQTT is enabled.
func (s *Service) Optimize(ctx context.Context, demand int) (plan induction.Plan, err error) {
	ctx, span := tracing.Start(ctx, "induction.optimize", attribute.Int("service_demand", demand))
	defer func() { tracing.End(span, err) }()

	snap, err := s.manager.Current(ctx)
	if err != nil {
		return induction.Plan{}, err
	}
	plan = s.policy.PlanAt(snap.Fleet(), demand, s.now())
	span.SetAttributes(attribute.String("run_id", plan.RunID), attribute.Int("shortfall", plan.Summary.Shortfall))
	s.log.Infof("generated %d induction decisions (demand %d, shortfall %d)",
		len(plan.Decisions), demand, plan.Summary.Shortfall)
	s.recordAllocation(plan.RunID, "optimize", demand, plan.Decisions, plan.GeneratedAt)
	if s.plans != nil {
		if err := s.plans.PublishPlan(plan.Decisions, demand, plan.GeneratedAt); err != nil {
			s.log.Warnf("publish plan: %v", err)
		}
	}
	return plan, nil
}

// Simulate runs a what-if scenario against the current fleet.
func (s *Service) Simulate(ctx context.Context, kind scenario.Kind, params scenario.Params, demand int) (res scenario.Result, err error) {
	ctx, span := tracing.Start(ctx, "induction.simulate",
		attribute.String("scenario_type", string(kind)), attribute.Int("service_demand", demand))
	defer func() { tracing.End(span, err) }()

	snap, err := s.manager.Current(ctx)
	if err != nil {
		return scenario.Result{}, err
	}
	if !kind.Known() {
		s.log.Warnf("unknown scenario type %q, running as custom", kind)
	}
	res = s.engine.RunAt(snap.Fleet(), kind, params, demand, s.now())
	s.log.Infof("simulation %s complete: %d changes", kind, res.Comparison.TotalChanges)
	s.recordAllocation(res.ID, "baseline", res.Demand, res.Baseline, res.Timestamp)
	s.recordAllocation(res.ID, "scenario", res.ScenarioDemand, res.Scenario, res.Timestamp)
	if rec, ok := s.sink.(coremetrics.ScenarioRecorder); ok {
		rerr := rec.RecordScenario(coremetrics.ScenarioEvent{
			ScenarioID:  res.ID,
			Kind:        string(kind),
			Changes:     res.Comparison.TotalChanges,
			Differences: res.Comparison.Differences,
			Time:        res.Timestamp,
		})
		if rerr != nil {
			s.log.Warnf("record scenario: %v", rerr)
		}
	}
	return res, nil
}

func (s *Service) recordAllocation(runID, runContext string, demand int, decisions []model.InductionDecision, at time.Time) {
	err := s.sink.RecordAllocation(coremetrics.AllocationEvent{
		RunID:     runID,
		Context:   runContext,
		Demand:    demand,
		Decisions: decisions,
		Time:      at,
	})
	if err != nil {
		s.log.Warnf("record allocation: %v", err)
	}
}

// AddOverride stores an operator override for a known trainset and rebuilds
// the snapshot so the override takes effect immediately.
func (s *Service) AddOverride(ctx context.Context, o ingestion.Override) error {
	if s.overrides == nil {
		return ErrOverridesDisabled
	}
	if _, err := s.manager.Trainset(ctx, o.TrainsetID); err != nil {
		return err
	}
	if err := s.overrides.Add(o); err != nil {
		return err
	}
	s.log.Infof("manual override added for %s", o.TrainsetID)
	_, err := s.manager.Refresh(ctx)
	return err
}

// RemoveOverride deletes the override of trainsetID and reports whether one
// existed.
func (s *Service) RemoveOverride(ctx context.Context, trainsetID string) (bool, error) {
	if s.overrides == nil {
		return false, ErrOverridesDisabled
	}
	if !s.overrides.Remove(trainsetID) {
		return false, nil
	}
	s.log.Infof("manual override removed for %s", trainsetID)
	_, err := s.manager.Refresh(ctx)
	return true, err
}

// RecordOutcome feeds an observed outcome back into the forecaster.
func (s *Service) RecordOutcome(ctx context.Context, trainsetID string, o prediction.Outcome) error {
	t, err := s.manager.Trainset(ctx, trainsetID)
	if err != nil {
		return err
	}
	s.forecaster.Record(prediction.FeaturesOf(t, s.now()), o)
	return nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	opts := apiinduction.Options{
		Scorer:         s.policy.Scorer(),
		Forecaster:     s.forecaster,
		DefaultDemand:  s.cfg.Optimization.DefaultServiceDemand,
		Version:        Version,
		RequestTimeout: time.Duration(s.cfg.HTTP.RequestTimeoutSeconds) * time.Second,
		Now:            s.now,
	}
	if s.promEnabled() && s.cfg.Metrics.PrometheusPort == "" {
		opts.Metrics = metrics.Handler()
	}
	return tracing.Middleware(apiinduction.New(s, opts).Router(), "induction-api")
}

func (s *Service) promEnabled() bool {
	for _, sc := range s.cfg.Metrics.Sinks {
		if sc.Type == "prometheus" {
			return true
		}
	}
	return false
}

// Run performs an initial refresh, then serves the API until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	collectCtx, stopCollector := context.WithCancel(ctx)
	done := metrics.StartRefreshCollector(collectCtx, s.bus, s.sink)
	defer func() {
		stopCollector()
		<-done
	}()

	if _, err := s.manager.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	if s.promEnabled() && s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, ":"+s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Address, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		defer coremon.Recover()
		s.log.Infof("HTTP API listening on %s", s.cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases the MQTT session, the event bus and any source holding
// resources.
func (s *Service) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if s.mqtt != nil {
			s.mqtt.Disconnect()
		}
		if s.bus != nil {
			s.bus.Close()
		}
		for i := len(s.closers) - 1; i >= 0; i-- {
			if err := s.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		coremon.Flush(2 * time.Second)
	})
	return errors.Join(errs...)
}
