package induction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func TestPlanAt(t *testing.T) {
	fleet := []model.Trainset{readyTrainset("TS-001", 40000), readyTrainset("TS-002", 60000), blockedTrainset("TS-003")}
	p := newTestPolicy()

	plan := p.PlanAt(fleet, 3, testNow)
	_, err := uuid.Parse(plan.RunID)
	require.NoError(t, err)
	assert.Equal(t, testNow, plan.GeneratedAt)
	assert.Len(t, plan.Decisions, 3)
	assert.Equal(t, Summary{Demand: 3, Service: 2, Maintenance: 1, Shortfall: 1}, plan.Summary)
	assert.Equal(t, p.AllocateAt(fleet, 3, testNow), plan.Decisions)

	other := p.PlanAt(fleet, 3, testNow)
	assert.NotEqual(t, plan.RunID, other.RunID)
}
