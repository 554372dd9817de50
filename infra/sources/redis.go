package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hydrolox-0/ff-sih-backup/core/ingestion"
	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
)

// DefaultOverridesKey is the hash holding one JSON override per trainset.
const DefaultOverridesKey = "induction:overrides"

// RedisOptions configures a RedisOverrideStore.
type RedisOptions struct {
	Address  string        `json:"address"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Key      string        `json:"key"`
	Timeout  time.Duration `json:"timeout"`
}

// RedisOverrideStore shares manual overrides between service replicas. Each
// override is a field of one Redis hash keyed by trainset id.
type RedisOverrideStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger
}

// NewRedisOverrideStore connects to Redis and checks the connection.
func NewRedisOverrideStore(ctx context.Context, opts RedisOptions) (*RedisOverrideStore, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("redis override store: address is required")
	}
	if opts.Key == "" {
		opts.Key = DefaultOverridesKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisOverrideStore{
		client:  client,
		key:     opts.Key,
		timeout: opts.Timeout,
		now:     time.Now,
		log:     logger.New("redis_overrides"),
	}, nil
}

func (s *RedisOverrideStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Add stores o, replacing any previous override for the same trainset.
func (s *RedisOverrideStore) Add(o ingestion.Override) error {
	if err := validateOverride(o); err != nil {
		return err
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = s.now()
	}
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	ctx, cancel := s.opContext()
	defer cancel()
	return s.client.HSet(ctx, s.key, o.TrainsetID, data).Err()
}

// Remove deletes the override of trainsetID and reports whether one existed.
// Redis failures are logged and reported as not removed.
func (s *RedisOverrideStore) Remove(trainsetID string) bool {
	ctx, cancel := s.opContext()
	defer cancel()
	n, err := s.client.HDel(ctx, s.key, trainsetID).Result()
	if err != nil {
		s.log.Errorf("remove override %s: %v", trainsetID, err)
		return false
	}
	return n > 0
}

// Get returns the override of trainsetID.
func (s *RedisOverrideStore) Get(ctx context.Context, trainsetID string) (ingestion.Override, error) {
	raw, err := s.client.HGet(ctx, s.key, trainsetID).Bytes()
	if errors.Is(err, redis.Nil) {
		return ingestion.Override{}, fmt.Errorf("%w: %s", ErrOverrideNotFound, trainsetID)
	}
	if err != nil {
		return ingestion.Override{}, err
	}
	var o ingestion.Override
	if err := json.Unmarshal(raw, &o); err != nil {
		return ingestion.Override{}, fmt.Errorf("decode override %s: %w", trainsetID, err)
	}
	return o, nil
}

// FetchOverrides returns the active overrides ordered by trainset id.
// Entries that no longer decode are skipped.
func (s *RedisOverrideStore) FetchOverrides(ctx context.Context) ([]ingestion.Override, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	res := make([]ingestion.Override, 0, len(all))
	for id, raw := range all {
		var o ingestion.Override
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			s.log.Warnf("skipping malformed override %s: %v", id, err)
			continue
		}
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].TrainsetID < res[j].TrainsetID })
	return res, nil
}

// Close releases the connection pool.
func (s *RedisOverrideStore) Close() error { return s.client.Close() }
