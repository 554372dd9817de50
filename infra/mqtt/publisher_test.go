package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func TestPlanPublisher(t *testing.T) {
	fc := newFakeClient()
	withFakeClient(t, fc)
	c, err := Connect(Config{Broker: "tcp://localhost:1883", QoS: 1})
	require.NoError(t, err)

	p := NewPlanPublisher(c, "depot")
	assert.Equal(t, "depot/plan", p.Topic())

	at := time.Date(2024, 12, 9, 5, 0, 0, 0, time.UTC)
	decisions := []model.InductionDecision{{TrainsetID: "TS-001", RecommendedStatus: model.StatusRevenueService}}
	require.NoError(t, p.PublishPlan(decisions, 20, at))

	require.Len(t, fc.published, 1)
	msg := fc.published[0]
	assert.Equal(t, "depot/plan", msg.topic)
	assert.True(t, msg.retained)
	assert.Equal(t, byte(1), msg.qos)

	var got struct {
		GeneratedAt time.Time `json:"generated_at"`
		Demand      int       `json:"service_demand"`
		Decisions   []struct {
			TrainsetID string `json:"trainset_id"`
		} `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.True(t, got.GeneratedAt.Equal(at))
	assert.Equal(t, 20, got.Demand)
	require.Len(t, got.Decisions, 1)
	assert.Equal(t, "TS-001", got.Decisions[0].TrainsetID)

	fc.publishErr = errors.New("broker gone")
	assert.Error(t, p.PublishPlan(decisions, 20, at))
}
