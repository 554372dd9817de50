package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// ErrUnknownMutation is returned when a modification names an unsupported op.
var ErrUnknownMutation = errors.New("unknown mutation")

// Mutation is one permitted change applied by a custom scenario. The set is
// closed: SetStatus, AddJobCard, InvalidateCertificate and SetMileage.
type Mutation interface {
	Op() string
	apply(t *model.Trainset, now time.Time)
}

const (
	OpSetStatus             = "set_status"
	OpAddJobCard            = "add_job_card"
	OpInvalidateCertificate = "invalidate_certificate"
	OpSetMileage            = "set_mileage"
)

// SetStatus overrides the current operating status.
type SetStatus struct{ Status model.Status }

func (SetStatus) Op() string { return OpSetStatus }

func (m SetStatus) apply(t *model.Trainset, _ time.Time) { t.CurrentStatus = m.Status }

// AddJobCard appends a work order. Missing identifiers are derived from the
// trainset and the scenario date.
type AddJobCard struct{ JobCard model.JobCard }

func (AddJobCard) Op() string { return OpAddJobCard }

func (m AddJobCard) apply(t *model.Trainset, now time.Time) {
	jc := m.JobCard
	jc.TrainsetID = t.ID
	if jc.ID == "" {
		jc.ID = syntheticJobID("CUST", t.ID, now)
	}
	if jc.Status == "" {
		jc.Status = model.JobOpen
	}
	if jc.CreatedDate.IsZero() {
		jc.CreatedDate = now
	}
	t.JobCards = append(t.JobCards, jc)
}

// InvalidateCertificate expires every certificate of the given type.
type InvalidateCertificate struct{ Type model.CertificateType }

func (InvalidateCertificate) Op() string { return OpInvalidateCertificate }

func (m InvalidateCertificate) apply(t *model.Trainset, now time.Time) {
	expireCertificates(t, m.Type, now)
}

// SetMileage overrides the current mileage.
type SetMileage struct{ Mileage float64 }

func (SetMileage) Op() string { return OpSetMileage }

func (m SetMileage) apply(t *model.Trainset, _ time.Time) { t.CurrentMileage = m.Mileage }

// Modification targets one trainset with a mutation.
type Modification struct {
	TrainsetID string
	Mutation   Mutation
}

type modificationWire struct {
	TrainsetID      string                `json:"trainset_id" yaml:"trainset_id"`
	Op              string                `json:"op" yaml:"op"`
	Status          model.Status          `json:"status,omitempty" yaml:"status,omitempty"`
	JobCard         *model.JobCard        `json:"job_card,omitempty" yaml:"job_card,omitempty"`
	CertificateType model.CertificateType `json:"certificate_type,omitempty" yaml:"certificate_type,omitempty"`
	Mileage         *float64              `json:"mileage,omitempty" yaml:"mileage,omitempty"`
}

func (w modificationWire) decode() (Modification, error) {
	m := Modification{TrainsetID: w.TrainsetID}
	switch w.Op {
	case OpSetStatus:
		if !w.Status.Valid() {
			return m, fmt.Errorf("%s: invalid status %q", w.Op, w.Status)
		}
		m.Mutation = SetStatus{Status: w.Status}
	case OpAddJobCard:
		if w.JobCard == nil {
			return m, fmt.Errorf("%s: job_card is required", w.Op)
		}
		if w.JobCard.Priority < 1 || w.JobCard.Priority > 5 {
			return m, fmt.Errorf("%s: priority %d out of range 1..5", w.Op, w.JobCard.Priority)
		}
		m.Mutation = AddJobCard{JobCard: *w.JobCard}
	case OpInvalidateCertificate:
		ct, err := model.ParseCertificateType(string(w.CertificateType))
		if err != nil {
			return m, fmt.Errorf("%s: %w", w.Op, err)
		}
		m.Mutation = InvalidateCertificate{Type: ct}
	case OpSetMileage:
		if w.Mileage == nil || *w.Mileage < 0 {
			return m, fmt.Errorf("%s: non-negative mileage is required", w.Op)
		}
		m.Mutation = SetMileage{Mileage: *w.Mileage}
	default:
		return m, fmt.Errorf("%w %q", ErrUnknownMutation, w.Op)
	}
	return m, nil
}

func (m Modification) wire() modificationWire {
	w := modificationWire{TrainsetID: m.TrainsetID}
	switch mu := m.Mutation.(type) {
	case SetStatus:
		w.Op, w.Status = mu.Op(), mu.Status
	case AddJobCard:
		jc := mu.JobCard
		w.Op, w.JobCard = mu.Op(), &jc
	case InvalidateCertificate:
		w.Op, w.CertificateType = mu.Op(), mu.Type
	case SetMileage:
		mileage := mu.Mileage
		w.Op, w.Mileage = mu.Op(), &mileage
	}
	return w
}

// UnmarshalJSON decodes the flat {trainset_id, op, ...} form.
func (m *Modification) UnmarshalJSON(b []byte) error {
	var w modificationWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	dec, err := w.decode()
	if err != nil {
		return err
	}
	*m = dec
	return nil
}

// MarshalJSON encodes the flat {trainset_id, op, ...} form.
func (m Modification) MarshalJSON() ([]byte, error) { return json.Marshal(m.wire()) }

// UnmarshalYAML decodes the flat form from scenario files.
func (m *Modification) UnmarshalYAML(node *yaml.Node) error {
	var w modificationWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	dec, err := w.decode()
	if err != nil {
		return err
	}
	*m = dec
	return nil
}

// MarshalYAML encodes the flat form.
func (m Modification) MarshalYAML() (any, error) { return m.wire(), nil }
