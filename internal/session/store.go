// Package session keeps admin auth tokens per visitor and signs them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// KeyPrefix namespaces stored admin tokens.
const KeyPrefix = "sly_admin_auth"

// ErrNotFound is returned when no token is stored for a visitor.
var ErrNotFound = errors.New("session: token not found")

// Store persists the admin token for a visitor.
type Store interface {
	Save(ctx context.Context, visitorID, token string, ttl time.Duration) error
	Load(ctx context.Context, visitorID string) (string, error)
	Delete(ctx context.Context, visitorID string) error
}

func tokenKey(visitorID string) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, visitorID)
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, visitorID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{token: token}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[tokenKey(visitorID)] = entry
	return nil
}

func (s *MemoryStore) Load(_ context.Context, visitorID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tokenKey(visitorID)
	entry, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", ErrNotFound
	}
	return entry.token, nil
}

// Sweep drops expired tokens and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Delete(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tokenKey(visitorID))
	return nil
}

// RedisStore keeps tokens in Redis so sessions survive restarts and are
// shared across replicas.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("slybarber.internal.session")
	}
	return &RedisStore{redis: client, tracer: tracer}
}

func (s *RedisStore) Save(ctx context.Context, visitorID, token string, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	if err := s.redis.Set(ctx, tokenKey(visitorID), token, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist token: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, visitorID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	token, err := s.redis.Get(ctx, tokenKey(visitorID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		span.RecordError(err)
		return "", fmt.Errorf("session: failed to load token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Delete(ctx context.Context, visitorID string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, tokenKey(visitorID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete token: %w", err)
	}
	return nil
}
