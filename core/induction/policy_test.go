package induction

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func readyTrainset(id string, mileage float64) model.Trainset {
	return model.Trainset{
		ID:             id,
		CarCount:       model.DefaultCarCount,
		CurrentStatus:  model.StatusStandby,
		CurrentMileage: mileage,
		FitnessCertificates: []model.FitnessCertificate{
			{Type: model.CertRollingStock, ExpiryDate: testNow.AddDate(0, 6, 0), IsValid: true},
			{Type: model.CertTelecom, ExpiryDate: testNow.AddDate(0, 6, 0), IsValid: true},
		},
		JobCards: []model.JobCard{},
	}
}

func blockedTrainset(id string) model.Trainset {
	t := readyTrainset(id, 30000)
	t.JobCards = append(t.JobCards, model.JobCard{ID: "WO-" + id, TrainsetID: id, Status: model.JobOpen, Priority: 1})
	return t
}

func newTestPolicy() *Policy {
	return NewPolicy(DefaultConfig(), WithClock(func() time.Time { return testNow }))
}

func statusOf(decisions []model.InductionDecision) map[string]model.Status {
	out := make(map[string]model.Status, len(decisions))
	for _, d := range decisions {
		out[d.TrainsetID] = d.RecommendedStatus
	}
	return out
}

func TestAllocateOneNotReady(t *testing.T) {
	fleet := []model.Trainset{
		readyTrainset("TS-001", 46000),
		readyTrainset("TS-002", 47000),
		blockedTrainset("TS-003"),
		readyTrainset("TS-004", 49000),
		readyTrainset("TS-005", 50000),
	}
	decisions := newTestPolicy().Allocate(fleet, 3)
	require.Len(t, decisions, 5)

	sum := Summarize(decisions, 3)
	assert.Equal(t, Summary{Demand: 3, Service: 3, Standby: 1, Maintenance: 1}, sum)

	st := statusOf(decisions)
	assert.Equal(t, model.StatusMaintenance, st["TS-003"])
	assert.Equal(t, model.StatusStandby, st["TS-005"])
	for _, d := range decisions {
		if d.TrainsetID == "TS-003" {
			assert.Equal(t, []string{ReasonNotReady}, d.Reasoning)
			assert.Greater(t, d.PriorityScore, 0.0)
			assert.Zero(t, d.EstimatedServiceHours)
		}
		assert.NotNil(t, d.Conflicts)
		assert.Empty(t, d.Conflicts)
	}
}

func TestAllocateTopScoresWin(t *testing.T) {
	var fleet []model.Trainset
	// Input order deliberately scrambled; lower mileage scores higher.
	for _, i := range []int{7, 2, 9, 0, 5, 3, 8, 1, 6, 4} {
		fleet = append(fleet, readyTrainset(fmt.Sprintf("TS-%03d", i), 40000+float64(i)*1000))
	}
	decisions := newTestPolicy().Allocate(fleet, 5)
	require.Len(t, decisions, 10)

	for i, d := range decisions {
		assert.Equal(t, fmt.Sprintf("TS-%03d", i), d.TrainsetID, "decisions sorted by score")
		if i < 5 {
			assert.Equal(t, model.StatusRevenueService, d.RecommendedStatus)
			assert.Equal(t, NominalServiceHours, d.EstimatedServiceHours)
			assert.Len(t, d.Reasoning, 2)
		} else {
			assert.Equal(t, model.StatusStandby, d.RecommendedStatus)
			assert.Equal(t, []string{ReasonDemandMet}, d.Reasoning)
		}
	}
	assert.Equal(t, "allocated to service (demand: 5, current: 0)", decisions[0].Reasoning[0])
	assert.Contains(t, decisions[4].Reasoning[0], "current: 4")
}

func TestAllocateTiesKeepInputOrder(t *testing.T) {
	fleet := []model.Trainset{
		readyTrainset("TS-C", 50000),
		readyTrainset("TS-A", 50000),
		readyTrainset("TS-B", 50000),
	}
	decisions := newTestPolicy().Allocate(fleet, 2)
	require.Len(t, decisions, 3)
	assert.Equal(t, []string{"TS-C", "TS-A", "TS-B"}, []string{decisions[0].TrainsetID, decisions[1].TrainsetID, decisions[2].TrainsetID})
	assert.Equal(t, model.StatusStandby, decisions[2].RecommendedStatus)
}

func TestAllocateDemandExceedsReady(t *testing.T) {
	fleet := []model.Trainset{readyTrainset("TS-001", 50000), blockedTrainset("TS-002"), readyTrainset("TS-003", 51000)}
	decisions := newTestPolicy().Allocate(fleet, 10)
	sum := Summarize(decisions, 10)
	assert.Equal(t, 2, sum.Service)
	assert.Equal(t, 1, sum.Maintenance)
	assert.Equal(t, 0, sum.Standby)
	assert.Equal(t, 8, sum.Shortfall)
}

func TestAllocateEmptyAndNonPositiveDemand(t *testing.T) {
	p := newTestPolicy()
	out := p.Allocate(nil, 5)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	fleet := []model.Trainset{readyTrainset("TS-001", 50000), blockedTrainset("TS-002")}
	for _, demand := range []int{0, -3} {
		sum := Summarize(p.Allocate(fleet, demand), demand)
		assert.Zero(t, sum.Service)
		assert.Equal(t, 1, sum.Standby)
		assert.Equal(t, 1, sum.Maintenance)
		assert.Zero(t, sum.Shortfall)
	}
}

func TestAllocateIsDeterministic(t *testing.T) {
	build := func() []model.Trainset {
		return []model.Trainset{
			readyTrainset("TS-001", 52000),
			blockedTrainset("TS-002"),
			readyTrainset("TS-003", 48000),
			readyTrainset("TS-004", 48000),
		}
	}
	p := newTestPolicy()
	assert.Equal(t, p.Allocate(build(), 2), p.Allocate(build(), 2))
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	fleet := []model.Trainset{readyTrainset("TS-002", 52000), readyTrainset("TS-001", 48000)}
	before := model.CloneFleet(fleet)
	newTestPolicy().Allocate(fleet, 1)
	assert.Equal(t, before, fleet)
}
