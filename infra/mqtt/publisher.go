package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// PlanPublisher broadcasts the latest induction plan on <prefix>/plan as a
// retained message so depot displays receive it on connect.
type PlanPublisher struct {
	client *Client
	topic  string
}

// NewPlanPublisher creates a publisher using c.
func NewPlanPublisher(c *Client, prefix string) *PlanPublisher {
	return &PlanPublisher{client: c, topic: strings.TrimSuffix(prefix, "/") + "/plan"}
}

type planMessage struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Demand      int                       `json:"service_demand"`
	Decisions   []model.InductionDecision `json:"decisions"`
}

// Topic returns the plan topic.
func (p *PlanPublisher) Topic() string { return p.topic }

// PublishPlan sends the decisions of one allocation run.
func (p *PlanPublisher) PublishPlan(decisions []model.InductionDecision, demand int, at time.Time) error {
	payload, err := json.Marshal(planMessage{GeneratedAt: at, Demand: demand, Decisions: decisions})
	if err != nil {
		return err
	}
	return p.client.Publish(p.topic, true, payload)
}
