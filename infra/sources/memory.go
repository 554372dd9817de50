package sources

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
)

// ErrOverrideNotFound is returned by Get for a trainset without override.
var ErrOverrideNotFound = errors.New("override not found")

// MemoryOverrideStore keeps at most one manual override per trainset.
type MemoryOverrideStore struct {
	mu        sync.RWMutex
	overrides map[string]ingestion.Override
	now       func() time.Time
}

// NewMemoryOverrideStore creates an empty store.
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{overrides: make(map[string]ingestion.Override), now: time.Now}
}

// Add stores o, replacing any previous override for the same trainset.
func (s *MemoryOverrideStore) Add(o ingestion.Override) error {
	if err := validateOverride(o); err != nil {
		return err
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = s.now()
	}
	s.mu.Lock()
	s.overrides[o.TrainsetID] = o
	s.mu.Unlock()
	return nil
}

func validateOverride(o ingestion.Override) error {
	if o.TrainsetID == "" {
		return fmt.Errorf("override: trainset_id is required")
	}
	if o.StatusOverride != "" && !o.StatusOverride.Valid() {
		return fmt.Errorf("override: unknown status %q", o.StatusOverride)
	}
	return nil
}

// Remove deletes the override of trainsetID and reports whether one existed.
func (s *MemoryOverrideStore) Remove(trainsetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overrides[trainsetID]; !ok {
		return false
	}
	delete(s.overrides, trainsetID)
	return true
}

// Get returns the override of trainsetID.
func (s *MemoryOverrideStore) Get(trainsetID string) (ingestion.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[trainsetID]
	if !ok {
		return ingestion.Override{}, fmt.Errorf("%w: %s", ErrOverrideNotFound, trainsetID)
	}
	return o, nil
}

// FetchOverrides returns the active overrides ordered by trainset id.
func (s *MemoryOverrideStore) FetchOverrides(context.Context) ([]ingestion.Override, error) {
	s.mu.RLock()
	res := make([]ingestion.Override, 0, len(s.overrides))
	for _, o := range s.overrides {
		res = append(res, o)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].TrainsetID < res[j].TrainsetID })
	return res, nil
}
