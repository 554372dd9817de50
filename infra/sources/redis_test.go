package sources

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolox-0/ff-sih-backup/core/factory"
	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

func newRedisStore(t *testing.T) (*RedisOverrideStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisOverrideStore(context.Background(), RedisOptions{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisOverrideStore(t *testing.T) {
	s, mr := newRedisStore(t)
	at := time.Date(2024, 12, 9, 4, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	ctx := context.Background()

	require.NoError(t, s.Add(ingestion.Override{TrainsetID: "TS-005", StatusOverride: model.StatusMaintenance, Reason: "Operator reported unusual noise", OverrideBy: "supervisor_001"}))
	require.NoError(t, s.Add(ingestion.Override{TrainsetID: "TS-001", Reason: "note only"}))
	assert.True(t, mr.Exists(DefaultOverridesKey))

	got, err := s.Get(ctx, "TS-005")
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, got.StatusOverride)
	assert.True(t, at.Equal(got.Timestamp))

	all, err := s.FetchOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "TS-001", all[0].TrainsetID)
	assert.Equal(t, "TS-005", all[1].TrainsetID)

	assert.True(t, s.Remove("TS-005"))
	assert.False(t, s.Remove("TS-005"))
	_, err = s.Get(ctx, "TS-005")
	assert.ErrorIs(t, err, ErrOverrideNotFound)
}

func TestRedisOverrideStoreSharedBetweenStores(t *testing.T) {
	a, mr := newRedisStore(t)
	b, err := NewRedisOverrideStore(context.Background(), RedisOptions{Address: mr.Addr()})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Add(ingestion.Override{TrainsetID: "TS-010", StatusOverride: model.StatusStandby}))
	all, err := b.FetchOverrides(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "TS-010", all[0].TrainsetID)
}

func TestRedisOverrideStoreSkipsMalformed(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.HSet(DefaultOverridesKey, "TS-002", "{not json")
	require.NoError(t, s.Add(ingestion.Override{TrainsetID: "TS-003"}))

	all, err := s.FetchOverrides(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "TS-003", all[0].TrainsetID)
}

func TestRedisOverrideStoreRejectsInvalid(t *testing.T) {
	s, _ := newRedisStore(t)
	assert.Error(t, s.Add(ingestion.Override{}))
	assert.Error(t, s.Add(ingestion.Override{TrainsetID: "TS-001", StatusOverride: "parked"}))
}

func TestRedisOverrideStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := NewRedisOverrideStore(context.Background(), RedisOptions{Address: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)

	_, err = NewRedisOverrideStore(context.Background(), RedisOptions{})
	assert.Error(t, err)
}

func TestRegisteredRedisOverrideStore(t *testing.T) {
	mr := miniredis.RunT(t)
	srcs, err := ingestion.NewSources(ingestion.Config{
		Overrides: factory.ModuleConfig{Type: "redis", Conf: map[string]any{"address": mr.Addr(), "key": "depot:overrides", "timeout": "1s"}},
	})
	require.NoError(t, err)
	store, ok := srcs.Overrides.(*RedisOverrideStore)
	require.True(t, ok)
	defer store.Close()

	require.NoError(t, store.Add(ingestion.Override{TrainsetID: "TS-004"}))
	assert.True(t, mr.Exists("depot:overrides"))
}
