package session

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"clinic-queue/internal/status"
)

// Record is the authenticated user/facility context the queue components
// operate under. It is injected explicitly instead of being read from
// ambient storage, so queue logic stays testable.
type Record struct {
	UserID      string `json:"user_id" redis:"user_id"`
	DisplayName string `json:"display_name" redis:"display_name"`
	Token       string `json:"token" redis:"token"`
	FacilityID  string `json:"facility_id" redis:"facility_id"`
}

type Store interface {
	Current(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

const redisKey = "session:current"

// RedisStore persists the session record so the daemon survives restarts
// without re-authenticating the operator.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Current(ctx context.Context) (Record, error) {
	fields, err := s.redis.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return Record{}, err
	}
	if len(fields) == 0 {
		return Record{}, status.ErrNoSession
	}
	return Record{
		UserID:      fields["user_id"],
		DisplayName: fields["display_name"],
		Token:       fields["token"],
		FacilityID:  fields["facility_id"],
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	return s.redis.HSet(ctx, redisKey, map[string]any{
		"user_id":      rec.UserID,
		"display_name": rec.DisplayName,
		"token":        rec.Token,
		"facility_id":  rec.FacilityID,
	}).Err()
}

// MemoryStore holds the record in memory. Used in tests and when the daemon
// runs without redis.
type MemoryStore struct {
	mu  sync.RWMutex
	rec Record
	set bool
}

func NewMemoryStore(rec Record) *MemoryStore {
	return &MemoryStore{rec: rec, set: true}
}

func (s *MemoryStore) Current(context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Record{}, status.ErrNoSession
	}
	return s.rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	return nil
}
