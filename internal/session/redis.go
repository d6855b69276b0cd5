package session

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"talkbot/internal/dialogue"
)

const (
	keyPrefix  = "talkbot:state:"
	defaultTTL = 7 * 24 * time.Hour
)

// RedisStore keeps states in Redis so they survive restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get refreshes the TTL of the entry it reads.
func (s *RedisStore) Get(ctx context.Context, userID int64) (dialogue.State, error) {
	key := s.key(userID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return dialogue.StateNone, nil
	}
	if err != nil {
		return dialogue.StateNone, fmt.Errorf("get state %d: %w", userID, err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return dialogue.StateNone, fmt.Errorf("decode state %d: %w", userID, err)
	}

	s.refresh(ctx, userID)
	return e.State, nil
}

// refresh extends the TTL of userID's entry. Failures are logged only.
func (s *RedisStore) refresh(ctx context.Context, userID int64) {
	if err := s.client.Expire(ctx, s.key(userID), s.ttl).Err(); err != nil {
		log.Debug("Failed to refresh state TTL", "user", userID, "err", err)
	}
}

func (s *RedisStore) Set(ctx context.Context, userID int64, state dialogue.State) error {
	key := s.key(userID)
	if state == dialogue.StateNone {
		return s.client.Del(ctx, key).Err()
	}

	val, err := json.Marshal(Entry{State: state, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("set state %d: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}
