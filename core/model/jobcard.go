package model

import (
	"fmt"
	"time"
)

// JobCardStatus is the lifecycle state of a work order.
type JobCardStatus string

const (
	JobOpen       JobCardStatus = "open"
	JobInProgress JobCardStatus = "in_progress"
	JobClosed     JobCardStatus = "closed"
)

// ParseJobCardStatus converts a string into a JobCardStatus.
func ParseJobCardStatus(s string) (JobCardStatus, error) {
	switch st := JobCardStatus(s); st {
	case JobOpen, JobInProgress, JobClosed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown job card status %q", s)
	}
}

// CriticalPriority is the lowest priority number that blocks service when
// the job card is still open. Priority 1 is the most urgent.
const CriticalPriority = 2

// JobCard is a maintenance work order attached to a trainset.
type JobCard struct {
	ID             string        `json:"job_id" yaml:"job_id"`
	TrainsetID     string        `json:"trainset_id" yaml:"trainset_id"`
	Status         JobCardStatus `json:"status" yaml:"status"`
	Priority       int           `json:"priority" yaml:"priority"`
	EstimatedHours float64       `json:"estimated_hours" yaml:"estimated_hours"`
	Description    string        `json:"description" yaml:"description"`
	CreatedDate    time.Time     `json:"created_date" yaml:"created_date"`
}

// IsCritical reports whether the job card is open with priority 1 or 2.
func (j JobCard) IsCritical() bool {
	return j.Status == JobOpen && j.Priority <= CriticalPriority
}

// Validate checks the priority range and mandatory identifiers.
func (j JobCard) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job card id is required")
	}
	if j.Priority < 1 || j.Priority > 5 {
		return fmt.Errorf("job card %s: priority %d out of range 1..5", j.ID, j.Priority)
	}
	return nil
}
