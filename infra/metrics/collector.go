package metrics

import (
	"context"
	"sort"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	coremetrics "github.com/hydrolox-0/ff-sih-backup/core/metrics"
	"github.com/hydrolox-0/ff-sih-backup/internal/eventbus"
)

// StartRefreshCollector subscribes to snapshot refresh events and records
// them on sink when it implements RefreshRecorder. It stops when the context
// is canceled or the bus is closed. The returned channel is closed on exit.
func StartRefreshCollector(ctx context.Context, bus *eventbus.TypedBus[ingestion.RefreshEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.RefreshRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordRefresh(toMetricsEvent(ev))
			}
		}
	}()
	return done
}

func toMetricsEvent(ev ingestion.RefreshEvent) coremetrics.RefreshEvent {
	failed := make([]string, 0, len(ev.SourceErrors))
	for src := range ev.SourceErrors {
		failed = append(failed, src)
	}
	sort.Strings(failed)
	return coremetrics.RefreshEvent{
		Trainsets:     ev.Trainsets,
		FailedSources: failed,
		Duration:      ev.Duration,
		Time:          ev.Time,
	}
}
