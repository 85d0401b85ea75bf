package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayo6706/mass-payout/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long cached credentials survive without being rewritten.
const DefaultTTL = 12 * time.Hour

const redisKeyPrefix = "session"

var ErrEmptySessionID = errors.New("session id is required")

// Store caches one credential pair per caller session. Writes replace the
// previous pair; the last write wins.
type Store interface {
	Get(ctx context.Context, sessionID string) (domain.Credentials, bool, error)
	Put(ctx context.Context, sessionID string, creds domain.Credentials) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// RedisStore keeps credentials in a redis hash that expires after ttl.
type RedisStore struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (domain.Credentials, bool, error) {
	if sessionID == "" {
		return domain.Credentials{}, false, ErrEmptySessionID
	}
	fields, err := s.redis.HGetAll(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return domain.Credentials{}, false, fmt.Errorf("read session credentials: %w", err)
	}
	creds := domain.Credentials{
		ClientID:     fields["client_id"],
		ClientSecret: fields["client_secret"],
	}
	if !creds.Complete() {
		return domain.Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, creds domain.Credentials) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	key := redisKey(sessionID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "client_id", creds.ClientID, "client_secret", creds.ClientSecret)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write session credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := s.redis.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + ":" + sessionID
}

// MemoryStore is the single-process fallback used when no redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	creds     domain.Credentials
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (domain.Credentials, bool, error) {
	if sessionID == "" {
		return domain.Credentials{}, false, ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return domain.Credentials{}, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, sessionID)
		return domain.Credentials{}, false, nil
	}
	return entry.creds, true, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, creds domain.Credentials) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = memoryEntry{creds: creds, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
