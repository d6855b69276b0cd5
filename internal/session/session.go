// Package session keeps each user's dialogue state between updates.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"talkbot/internal/dialogue"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Store defines the interface for dialogue state storage.
type Store interface {
	// Get returns StateNone for users without a stored state.
	Get(ctx context.Context, userID int64) (dialogue.State, error)

	// Set stores state for userID. Setting StateNone removes the entry.
	Set(ctx context.Context, userID int64, state dialogue.State) error

	// Close releases any resources.
	Close() error
}

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Entry is the serialized form kept by persistent drivers.
type Entry struct {
	State     dialogue.State `json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	redisTTL    time.Duration
}

func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets how long an idle user's state is kept.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// NewStore creates a Store of the given type. Redis requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(cfg.redisClient, cfg.redisTTL), nil
	default:
		return nil, ErrInvalidStoreType
	}
}
