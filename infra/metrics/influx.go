package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
)

// InfluxSink writes induction events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAllocation writes one allocation_run point per run.
func (s *InfluxSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	counts := ev.Counts()
	p := write.NewPointWithMeasurement("allocation_run").
		AddTag("context", ev.Context).
		AddTag("run_id", ev.RunID).
		AddField("demand", ev.Demand).
		AddField("service", counts[model.StatusRevenueService]).
		AddField("standby", counts[model.StatusStandby]).
		AddField("maintenance", counts[model.StatusMaintenance]).
		AddField("shortfall", ev.Shortfall()).
		AddField("mean_score", round3(meanScore(ev.Decisions))).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordScenario writes the per-status deltas of a what-if run.
func (s *InfluxSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	p := write.NewPointWithMeasurement("scenario_run").
		AddTag("kind", ev.Kind).
		AddTag("scenario_id", ev.ScenarioID).
		AddField("changes", ev.Changes)
	for _, st := range model.RecommendedStatuses {
		p = p.AddField("delta_"+string(st), ev.Differences[st])
	}
	return s.write(p.SetTime(ev.Time))
}

// RecordRefresh writes the outcome of a snapshot refresh.
func (s *InfluxSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	p := write.NewPointWithMeasurement("ingestion_refresh").
		AddTag("component", "ingestion").
		AddField("trainsets", ev.Trainsets).
		AddField("failed_sources", len(ev.FailedSources)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func meanScore(ds []model.InductionDecision) float64 {
	if len(ds) == 0 {
		return 0
	}
	var sum float64
	for _, d := range ds {
		sum += d.PriorityScore
	}
	return sum / float64(len(ds))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
