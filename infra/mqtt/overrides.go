package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
)

// OverrideListener feeds operator overrides received over MQTT into an
// override store. Overrides arrive on <prefix>/<trainset>/override and are
// cleared by any message on <prefix>/<trainset>/override/clear.
type OverrideListener struct {
	store  ingestion.OverrideStore
	prefix string
	now    func() time.Time
	log    logger.Logger
}

// NewOverrideListener creates a listener writing to store.
func NewOverrideListener(store ingestion.OverrideStore, prefix string) *OverrideListener {
	return &OverrideListener{
		store:  store,
		prefix: strings.TrimSuffix(prefix, "/"),
		now:    time.Now,
		log:    logger.New("mqtt_overrides"),
	}
}

// SetTopic is the subscription filter for new overrides.
func (l *OverrideListener) SetTopic() string { return l.prefix + "/+/override" }

// ClearTopic is the subscription filter for override removals.
func (l *OverrideListener) ClearTopic() string { return l.prefix + "/+/override/clear" }

// Start subscribes both topics on c.
func (l *OverrideListener) Start(c *Client) error {
	if err := c.Subscribe(l.SetTopic(), l.handleSet); err != nil {
		return fmt.Errorf("subscribe %s: %w", l.SetTopic(), err)
	}
	if err := c.Subscribe(l.ClearTopic(), l.handleClear); err != nil {
		return fmt.Errorf("subscribe %s: %w", l.ClearTopic(), err)
	}
	l.log.Infof("listening for overrides on %s", l.SetTopic())
	return nil
}

type overridePayload struct {
	StatusOverride string `json:"status_override"`
	Reason         string `json:"reason"`
	OverrideBy     string `json:"override_by"`
}

func (l *OverrideListener) trainsetID(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, l.prefix+"/")
	if !ok {
		return "", false
	}
	id, _, ok := strings.Cut(rest, "/")
	return id, ok && id != ""
}

func (l *OverrideListener) handleSet(_ paho.Client, msg paho.Message) {
	id, ok := l.trainsetID(msg.Topic())
	if !ok {
		l.log.Warnf("ignoring override on unexpected topic %s", msg.Topic())
		return
	}
	var p overridePayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		l.log.Errorf("failed to decode override for %s: %v", id, err)
		return
	}
	o := ingestion.Override{TrainsetID: id, Reason: p.Reason, OverrideBy: p.OverrideBy, Timestamp: l.now()}
	if p.StatusOverride != "" {
		st, err := model.ParseStatus(p.StatusOverride)
		if err != nil {
			l.log.Errorf("override for %s: %v", id, err)
			return
		}
		o.StatusOverride = st
	}
	if err := l.store.Add(o); err != nil {
		l.log.Errorf("store override for %s: %v", id, err)
		return
	}
	l.log.Infof("manual override added for %s", id)
}

func (l *OverrideListener) handleClear(_ paho.Client, msg paho.Message) {
	id, ok := l.trainsetID(msg.Topic())
	if !ok {
		return
	}
	if l.store.Remove(id) {
		l.log.Infof("manual override removed for %s", id)
	}
}
