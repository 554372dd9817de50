// Package induction exposes the induction engine over HTTP.
package induction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	coreinduction "github.com/hydrolox-0/ff-sih-backup/core/induction"
	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/core/prediction"
	"github.com/hydrolox-0/ff-sih-backup/core/scenario"
	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
)

// Service is the engine surface used by the HTTP handlers.
type Service interface {
	Fleet(ctx context.Context) (ingestion.Snapshot, error)
	Trainset(ctx context.Context, id string) (model.Trainset, error)
	LastSnapshot() (ingestion.Snapshot, bool)
	Refresh(ctx context.Context) (ingestion.Snapshot, error)
	Optimize(ctx context.Context, demand int) (coreinduction.Plan, error)
	Simulate(ctx context.Context, kind scenario.Kind, params scenario.Params, demand int) (scenario.Result, error)
	AddOverride(ctx context.Context, o ingestion.Override) error
	RemoveOverride(ctx context.Context, trainsetID string) (bool, error)
	RecordOutcome(ctx context.Context, trainsetID string, o prediction.Outcome) error
}

// Options configures a Server. Metrics, when set, is served on /metrics.
type Options struct {
	Scorer         coreinduction.Scorer
	Forecaster     prediction.Forecaster
	DefaultDemand  int
	Version        string
	RequestTimeout time.Duration
	Metrics        http.Handler
	Now            func() time.Time
}

// Server exposes the induction engine over HTTP.
type Server struct {
	svc  Service
	opts Options
	log  logger.Logger
}

// New creates a Server backed by svc. Unset options fall back to the default
// scorer, the default forecaster, the wall clock and a 30 second timeout.
func New(svc Service, opts Options) *Server {
	if opts.Scorer.Config() == (coreinduction.Config{}) {
		opts.Scorer = coreinduction.NewScorer(coreinduction.DefaultConfig())
	}
	if opts.Forecaster == nil {
		opts.Forecaster = prediction.DefaultForecaster{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{svc: svc, opts: opts, log: logger.New("api")}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trainsets", s.handleTrainsets)
		r.Get("/trainsets/{id}", s.handleTrainset)
		r.Post("/optimize", s.handleOptimize)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/manual-override", s.handleAddOverride)
		r.Delete("/manual-override/{id}", s.handleRemoveOverride)
		r.Post("/refresh-data", s.handleRefresh)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/system/status", s.handleStatus)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.opts.Now().UTC(),
	})
}

func (s *Server) handleTrainsets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Fleet(r.Context())
	if err != nil {
		s.log.Errorf("fetch trainsets: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch trainset data")
		return
	}
	respondJSON(w, http.StatusOK, snap.Fleet())
}

// TrainsetDetail is a trainset together with its readiness, score breakdown
// and advisory forecast.
type TrainsetDetail struct {
	model.Trainset
	ServiceReady bool                         `json:"service_ready"`
	Score        coreinduction.ScoreBreakdown `json:"score"`
	Forecast     prediction.Forecast          `json:"forecast"`
}

func (s *Server) handleTrainset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.svc.Trainset(r.Context(), id)
	if errors.Is(err, ingestion.ErrUnknownTrainset) {
		respondError(w, http.StatusNotFound, "trainset not found")
		return
	}
	if err != nil {
		s.log.Errorf("fetch trainset %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch trainset data")
		return
	}
	now := s.opts.Now()
	respondJSON(w, http.StatusOK, TrainsetDetail{
		Trainset:     t,
		ServiceReady: t.IsServiceReady(now),
		Score:        s.opts.Scorer.Breakdown(t, now),
		Forecast:     prediction.Predict(s.opts.Forecaster, prediction.FeaturesOf(t, now)),
	})
}

func (s *Server) demand(raw string) (int, error) {
	if raw == "" {
		return s.opts.DefaultDemand, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("service_demand must be an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("service_demand must be non-negative")
	}
	return n, nil
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	demand, err := s.demand(r.URL.Query().Get("service_demand"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := s.svc.Optimize(r.Context(), demand)
	if err != nil {
		s.log.Errorf("optimize: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to optimize induction")
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

type simulateBody struct {
	ScenarioType  scenario.Kind   `json:"scenario_type"`
	Parameters    scenario.Params `json:"parameters"`
	ServiceDemand *int            `json:"service_demand"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body simulateBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.ScenarioType == "" {
		respondError(w, http.StatusBadRequest, "scenario_type is required")
		return
	}
	demand := s.opts.DefaultDemand
	if body.ServiceDemand != nil {
		if *body.ServiceDemand < 0 {
			respondError(w, http.StatusBadRequest, "service_demand must be non-negative")
			return
		}
		demand = *body.ServiceDemand
	}
	res, err := s.svc.Simulate(r.Context(), body.ScenarioType, body.Parameters, demand)
	if err != nil {
		s.log.Errorf("simulate %s: %v", body.ScenarioType, err)
		respondError(w, http.StatusInternalServerError, "failed to run simulation")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type overrideBody struct {
	TrainsetID     string `json:"trainset_id"`
	StatusOverride string `json:"status_override"`
	Reason         string `json:"reason"`
	OverrideBy     string `json:"override_by"`
}

func (s *Server) handleAddOverride(w http.ResponseWriter, r *http.Request) {
	var body overrideBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.TrainsetID == "" {
		respondError(w, http.StatusBadRequest, "trainset_id is required")
		return
	}
	o := ingestion.Override{TrainsetID: body.TrainsetID, Reason: body.Reason, OverrideBy: body.OverrideBy, Timestamp: s.opts.Now()}
	if body.StatusOverride != "" {
		st, err := model.ParseStatus(body.StatusOverride)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		o.StatusOverride = st
	}
	if err := s.svc.AddOverride(r.Context(), o); err != nil {
		if errors.Is(err, ingestion.ErrUnknownTrainset) {
			respondError(w, http.StatusNotFound, "trainset not found")
			return
		}
		s.log.Errorf("add override %s: %v", body.TrainsetID, err)
		respondError(w, http.StatusBadRequest, "failed to add manual override")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Manual override added for " + body.TrainsetID,
	})
}

func (s *Server) handleRemoveOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.svc.RemoveOverride(r.Context(), id)
	if err != nil {
		s.log.Errorf("remove override %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to remove manual override")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "no override found for trainset")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Manual override removed for " + id,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.log.Errorf("refresh: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to refresh data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":           "Data refreshed successfully",
		"trainsets_updated": snap.Len(),
		"timestamp":         snap.RefreshedAt,
		"source_errors":     snap.SourceErrors,
	})
}

type feedbackBody struct {
	TrainsetID string `json:"trainset_id"`
	prediction.Outcome
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.TrainsetID == "" {
		respondError(w, http.StatusBadRequest, "trainset_id is required")
		return
	}
	if body.ServiceHours < 0 || body.MaintenanceHours < 0 {
		respondError(w, http.StatusBadRequest, "hours must be non-negative")
		return
	}
	err := s.svc.RecordOutcome(r.Context(), body.TrainsetID, body.Outcome)
	if errors.Is(err, ingestion.ErrUnknownTrainset) {
		respondError(w, http.StatusNotFound, "trainset not found")
		return
	}
	if err != nil {
		s.log.Errorf("record outcome %s: %v", body.TrainsetID, err)
		respondError(w, http.StatusInternalServerError, "failed to record outcome")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Outcome recorded for " + body.TrainsetID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := "operational"
	dataManager := "healthy"
	resp := map[string]any{}
	if snap, ok := s.svc.LastSnapshot(); ok {
		resp["last_refresh"] = snap.RefreshedAt
		resp["trainsets"] = snap.Len()
		resp["stats"] = snap.Stats(s.opts.Now())
		if len(snap.SourceErrors) > 0 {
			status = "degraded"
			dataManager = "degraded"
			resp["source_errors"] = snap.SourceErrors
		}
	}
	resp["status"] = status
	resp["timestamp"] = s.opts.Now().UTC()
	resp["version"] = s.opts.Version
	resp["components"] = map[string]string{
		"data_manager": dataManager,
		"scheduler":    "healthy",
		"api":          "healthy",
	}
	respondJSON(w, http.StatusOK, resp)
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
