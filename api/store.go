package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRunNotFound = errors.New("run not found")

// RunStore keeps finished runs by id.
type RunStore interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
}

type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]*Run)}
}

func (s *MemoryRunStore) Save(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *MemoryRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

const runKeyPrefix = "run:v1:"

// RedisRunStore keeps runs as JSON values that expire after ttl. A zero
// ttl keeps them forever.
type RedisRunStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisRunStore(rdb redis.Cmdable, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{rdb: rdb, ttl: ttl}
}

func (s *RedisRunStore) Save(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := s.rdb.Set(ctx, runKeyPrefix+run.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *RedisRunStore) Get(ctx context.Context, id string) (*Run, error) {
	data, err := s.rdb.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &run, nil
}
