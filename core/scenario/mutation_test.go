package scenario

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func TestModificationJSON(t *testing.T) {
	raw := `[
		{"trainset_id": "TS-001", "op": "set_status", "status": "maintenance"},
		{"trainset_id": "TS-002", "op": "set_mileage", "mileage": 52000},
		{"trainset_id": "TS-003", "op": "invalidate_certificate", "certificate_type": "signalling"},
		{"trainset_id": "TS-004", "op": "add_job_card", "job_card": {"priority": 1, "estimated_hours": 4}}
	]`
	var mods []Modification
	require.NoError(t, json.Unmarshal([]byte(raw), &mods))
	require.Len(t, mods, 4)
	assert.Equal(t, SetStatus{Status: model.StatusMaintenance}, mods[0].Mutation)
	assert.Equal(t, SetMileage{Mileage: 52000}, mods[1].Mutation)
	assert.Equal(t, InvalidateCertificate{Type: model.CertSignalling}, mods[2].Mutation)
	assert.Equal(t, OpAddJobCard, mods[3].Mutation.Op())

	out, err := json.Marshal(mods[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"trainset_id": "TS-002", "op": "set_mileage", "mileage": 52000}`, string(out))
}

func TestModificationRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"unknown op":     `{"trainset_id": "TS-001", "op": "set_colour"}`,
		"bad status":     `{"trainset_id": "TS-001", "op": "set_status", "status": "parked"}`,
		"missing status": `{"trainset_id": "TS-001", "op": "set_status"}`,
		"no job card":    `{"trainset_id": "TS-001", "op": "add_job_card"}`,
		"bad priority":   `{"trainset_id": "TS-001", "op": "add_job_card", "job_card": {"priority": 9}}`,
		"bad cert":       `{"trainset_id": "TS-001", "op": "invalidate_certificate", "certificate_type": "hvac"}`,
		"no mileage":     `{"trainset_id": "TS-001", "op": "set_mileage"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var m Modification
			assert.Error(t, json.Unmarshal([]byte(raw), &m))
		})
	}

	var m Modification
	err := json.Unmarshal([]byte(cases["unknown op"]), &m)
	assert.ErrorIs(t, err, ErrUnknownMutation)
}

func TestModificationYAML(t *testing.T) {
	raw := `
- trainset_id: TS-005
  op: set_status
  status: standby
- trainset_id: TS-006
  op: invalidate_certificate
  certificate_type: telecom
`
	var mods []Modification
	require.NoError(t, yaml.Unmarshal([]byte(raw), &mods))
	require.Len(t, mods, 2)
	assert.Equal(t, "TS-005", mods[0].TrainsetID)
	assert.Equal(t, SetStatus{Status: model.StatusStandby}, mods[0].Mutation)
	assert.Equal(t, InvalidateCertificate{Type: model.CertTelecom}, mods[1].Mutation)

	out, err := yaml.Marshal(mods[1])
	require.NoError(t, err)
	assert.Contains(t, string(out), "op: invalidate_certificate")
}
