package model

import (
	"encoding/json"
	"fmt"
)

// Status is the operating state of a trainset.
type Status string

const (
	StatusRevenueService Status = "revenue_service"
	StatusStandby        Status = "standby"
	StatusMaintenance    Status = "maintenance"
	StatusCleaning       Status = "cleaning"
	StatusOutOfService   Status = "out_of_service"
)

// RecommendedStatuses lists the statuses the allocation policy can produce,
// in reporting order.
var RecommendedStatuses = []Status{StatusRevenueService, StatusStandby, StatusMaintenance}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRevenueService, StatusStandby, StatusMaintenance, StatusCleaning, StatusOutOfService:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// UnmarshalJSON rejects unknown status strings. An empty string decodes to
// the zero Status.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
